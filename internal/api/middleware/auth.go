package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Kushagra128/LangBridge/internal/auth"
)

type contextKey string

const UserContextKey contextKey = "user_id"

// SessionCookie is the cookie the web client stores its token in.
const SessionCookie = "jwt"

// AuthMiddleware resolves the caller's identity from a session token.
type AuthMiddleware struct {
	verifier *auth.Verifier
	logger   zerolog.Logger
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(verifier *auth.Verifier, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// RequireAuth rejects requests without a valid session token and stores the
// verified user ID in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			jsonError(w, http.StatusUnauthorized, "unauthorized - no token provided")
			return
		}

		userID, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected session token")
			jsonError(w, http.StatusUnauthorized, "unauthorized - invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// tokenFromRequest looks in the session cookie, then the Authorization
// header, then the token query parameter (browsers cannot set headers on a
// websocket handshake).
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WithUserID returns a context carrying an authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	noteUserID(ctx, userID)
	return context.WithValue(ctx, UserContextKey, userID)
}

// GetUserIDFromContext retrieves the authenticated user ID from the request context.
func GetUserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserContextKey).(string)
	return id
}
