package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
)

type contextKey string

const (
	// AuthTokenContextKey holds the visitor's marketplace API token.
	AuthTokenContextKey contextKey = "auth_token"
)

// AuthMiddleware reads the visitor's auth token out of the cookie session.
// Identity itself is resolved against the marketplace API by the services
// that need it; this app never manages credentials.
type AuthMiddleware struct {
	store sessions.Store
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(store sessions.Store) *AuthMiddleware {
	return &AuthMiddleware{store: store}
}

// LoadAuthToken copies the auth token from the session into the request
// context. Requests without a token continue unauthenticated.
func (m *AuthMiddleware) LoadAuthToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, "session")
		if err != nil {
			// Continue without identity if the session is unreadable.
			next.ServeHTTP(w, r)
			return
		}

		token, ok := session.Values["auth_token"].(string)
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), AuthTokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests that carry no auth token. HTMX requests get
// a client-side redirect header, regular requests a login redirect.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if AuthTokenFromContext(r.Context()) == "" {
			if IsHTMXRequest(r) {
				w.Header().Set("HX-Redirect", "/login")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthTokenFromContext returns the visitor's API token, or "".
func AuthTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(AuthTokenContextKey).(string)
	return token
}

// IsHTMXRequest reports whether the request came from HTMX.
func IsHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
