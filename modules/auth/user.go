package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cyberdas/backend/pkg/pg"
	"github.com/cyberdas/backend/pkg/quickauth"
)

// User is one account row. PasswordHash is nil for quick users, who were
// registered from an identity payload and never chose a password.
type User struct {
	ID            int64     `db:"id"`
	Email         string    `db:"email"`
	PasswordHash  *string   `db:"password_hash"`
	Name          string    `db:"name"`
	Surname       string    `db:"surname"`
	Patronymic    *string   `db:"patronymic"`
	Faculty       string    `db:"faculty"`
	Building      *string   `db:"building"`
	Room          *string   `db:"room"`
	EmailVerified bool      `db:"email_verified"`
	Quick         bool      `db:"quick"`
	CreatedAt     time.Time `db:"created_at"`
}

// UserStorage owns the users table.
type UserStorage interface {
	GetByEmail(ctx context.Context, tx pg.DBTX, email string) (User, error)
	GetByID(ctx context.Context, tx pg.DBTX, id int64) (User, error)
	// Create inserts the user and returns the new id, or ErrEmailTaken.
	Create(ctx context.Context, tx pg.DBTX, u User) (int64, error)
	MarkEmailVerified(ctx context.Context, tx pg.DBTX, email string) error
}

// PGUserStorage is the Postgres-backed user repository. It also serves as
// the user directory for quick authentication.
type PGUserStorage struct{}

// NewPGUserStorage creates the user repository.
func NewPGUserStorage() *PGUserStorage {
	return &PGUserStorage{}
}

func (s *PGUserStorage) GetByEmail(ctx context.Context, tx pg.DBTX, email string) (User, error) {
	return s.getBy(ctx, tx, "email = $1", email)
}

func (s *PGUserStorage) GetByID(ctx context.Context, tx pg.DBTX, id int64) (User, error) {
	return s.getBy(ctx, tx, "id = $1", id)
}

func (s *PGUserStorage) getBy(ctx context.Context, tx pg.DBTX, clause string, arg any) (User, error) {
	rows, err := tx.Query(ctx, "SELECT * FROM users WHERE "+clause, arg)
	if err != nil {
		return User{}, err
	}
	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[User])
	if err != nil {
		if pg.IsNotFoundError(err) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *PGUserStorage) Create(ctx context.Context, tx pg.DBTX, u User) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name, surname, patronymic, faculty, email_verified, quick)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		u.Email, u.PasswordHash, u.Name, u.Surname, u.Patronymic, u.Faculty, u.EmailVerified, u.Quick,
	).Scan(&id)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return 0, ErrEmailTaken
		}
		return 0, err
	}
	return id, nil
}

func (s *PGUserStorage) MarkEmailVerified(ctx context.Context, tx pg.DBTX, email string) error {
	tag, err := tx.Exec(ctx, `UPDATE users SET email_verified = true WHERE email = $1`, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// LookupByEmail implements quickauth.UserDirectory.
func (s *PGUserStorage) LookupByEmail(ctx context.Context, tx pg.DBTX, email string) (int64, bool, error) {
	u, err := s.GetByEmail(ctx, tx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return u.ID, true, nil
}

// CreateQuick implements quickauth.UserDirectory.
func (s *PGUserStorage) CreateQuick(ctx context.Context, tx pg.DBTX, p quickauth.Profile) (int64, error) {
	return s.Create(ctx, tx, User{
		Email:      p.Email,
		Name:       p.Name,
		Surname:    p.Surname,
		Patronymic: optional(p.Patronymic),
		Faculty:    p.Faculty,
		Quick:      true,
	})
}

// RefreshProfile implements quickauth.UserDirectory. Only fields the client
// actually supplied overwrite the stored ones.
func (s *PGUserStorage) RefreshProfile(ctx context.Context, tx pg.DBTX, uid int64, p quickauth.Profile) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET
			name = COALESCE(NULLIF($1, ''), name),
			surname = COALESCE(NULLIF($2, ''), surname),
			patronymic = COALESCE(NULLIF($3, ''), patronymic),
			faculty = COALESCE(NULLIF($4, ''), faculty)
		 WHERE id = $5`,
		p.Name, p.Surname, p.Patronymic, p.Faculty, uid)
	return err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var (
	_ UserStorage             = (*PGUserStorage)(nil)
	_ quickauth.UserDirectory = (*PGUserStorage)(nil)
)
