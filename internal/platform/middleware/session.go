package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookieName carries the opaque funnel session ID. The cookie has no
// Max-Age so it dies with the browser session, matching the ephemerality of
// the draft it scopes.
const SessionCookieName = "claimshub_session"

type contextKeyFunnelSession struct{}

var ContextKeyFunnelSession = contextKeyFunnelSession{}

// Session ensures every funnel request carries a session ID, minting one and
// setting the cookie on first contact.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), ContextKeyFunnelSession, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetFunnelSession retrieves the funnel session ID from the context.
func GetFunnelSession(ctx context.Context) string {
	sessionID, ok := ctx.Value(ContextKeyFunnelSession).(string)
	if !ok {
		return ""
	}
	return sessionID
}
