package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionHeader carries the session id for API clients that do not keep
// cookies.
const SessionHeader = "X-Session-ID"

const sessionKey contextKey = "session-id"

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	Cookie string
	TTL    time.Duration
	Logger *slog.Logger
}

// Session resolves the caller's session id from the X-Session-ID header or
// the session cookie, issuing a new one when neither is a valid UUID. The
// id is echoed in the response header.
func Session(cfg SessionConfig) func(next http.Handler) http.Handler {
	if cfg.Cookie == "" {
		cfg.Cookie = "ugb_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := validSessionID(r.Header.Get(SessionHeader))
			if id == "" {
				if c, err := r.Cookie(cfg.Cookie); err == nil {
					id = validSessionID(c.Value)
				}
			}
			if id == "" {
				id = uuid.New().String()
				cookie := &http.Cookie{
					Name:     cfg.Cookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   r.TLS != nil,
				}
				if cfg.TTL > 0 {
					cookie.MaxAge = int(cfg.TTL.Seconds())
				}
				http.SetCookie(w, cookie)
				if cfg.Logger != nil {
					cfg.Logger.DebugContext(r.Context(), "session issued", slog.String("session_id", id))
				}
			}
			w.Header().Set(SessionHeader, id)

			ctx := context.WithValue(r.Context(), sessionKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the session id stored by Session.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}

func validSessionID(s string) string {
	u, err := uuid.Parse(s)
	if err != nil {
		return ""
	}
	return u.String()
}
