package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "uid".
func UserID(id int64) slog.Attr {
	return slog.Int64("uid", id)
}

// SessionID records the session identifier under the key "sid".
func SessionID(sid string) slog.Attr {
	return slog.String("sid", sid)
}

// Email records an email address under the key "email".
func Email(email string) slog.Attr {
	return slog.String("email", email)
}

// Component records the originating subsystem under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
