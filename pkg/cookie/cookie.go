package cookie

import "net/http"

// Session cookie names are part of the wire contract with the frontend.
const (
	SessionName  = "SESSIONID"
	RememberName = "REMEMBER"
)

// New renders a hardened cookie. Secure, HttpOnly and SameSite=Strict are
// always applied; callers only choose name, value and lifetime. A maxAge of
// -1 instructs the browser to drop the cookie immediately (logout pattern).
func New(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// Expire renders a cookie that clears the named cookie on the client.
func Expire(name string) *http.Cookie {
	return New(name, "", -1)
}

// Extract returns the named cookie's value from the request, or the empty
// string when absent. It never fails; malformed cookie headers simply yield
// no value.
func Extract(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
