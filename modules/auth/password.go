package auth

import "golang.org/x/crypto/bcrypt"

// hashPassword derives the stored bcrypt hash for a plaintext password.
func hashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// checkPassword reports whether plaintext matches the stored hash. A nil
// hash belongs to a quick user and never matches.
func checkPassword(hash *string, plaintext string) bool {
	if hash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(plaintext)) == nil
}
