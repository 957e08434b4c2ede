package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/inkwellapp/inkwell/internal/session"
)

// CookieName is the session cookie. Its value is the opaque remote session
// secret; the server keeps no session state of its own.
const CookieName = "inkwell_session"

const (
	sessionKey contextKey = "session"
	tokenKey   contextKey = "session_token"
)

// Resolver is the slice of the session manager this middleware needs.
type Resolver interface {
	Resolve(ctx context.Context, token string) (session.Session, error)
}

// WithSession resolves the request's session cookie once, up front, and
// stores the result in the context. A missing or stale cookie yields the
// anonymous session; resolution failures degrade to anonymous rather than
// failing the request.
func WithSession(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			s, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				s = session.Anonymous
			}
			ctx := context.WithValue(r.Context(), sessionKey, s)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests whose resolved session is not authenticated.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetSession(r.Context()).Authenticated {
			writeUnauthenticated(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionToken extracts the raw session secret from the request cookie.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func GetSession(ctx context.Context) session.Session {
	s, ok := ctx.Value(sessionKey).(session.Session)
	if !ok {
		return session.Anonymous
	}
	return s
}

func GetSessionToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

func writeUnauthenticated(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":       "UNAUTHORIZED",
			"message":    "authentication required",
			"request_id": GetRequestID(r.Context()),
		},
	})
}
