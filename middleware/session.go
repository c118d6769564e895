package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie identifies the browsing session that owns a cart.
const SessionCookie = "cart_session"

const sessionMaxAge = 30 * 24 * 60 * 60

// SessionIDFrom returns the session id attached by Session.
func SessionIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionContextKey).(string)
	return id, ok && id != ""
}

// Session makes sure every request carries a session id, issuing a new
// cookie when the client has none or sends one that is not a UUID.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookie); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   sessionMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// EndSession expires the session cookie.
func EndSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
