package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package.
// A package-private key type means no other package can read or shadow the
// userID value we stash in the request context.
type contextKey string

const userIDKey contextKey = "userID"

// CookieName is the session cookie holding the JWT. Browser clients get the
// token as an HttpOnly cookie; API clients may send it as a Bearer header
// instead — extractToken accepts both.
const CookieName = "token"

// RequireAuth rejects requests without a valid token (401) and stores the
// authenticated user's ID in the request context for handlers downstream.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID.
// Returns (0, false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// extractUserID pulls the JWT from the session cookie or, failing that, an
// "Authorization: Bearer <token>" header, and validates it.
func extractUserID(r *http.Request, tokens *TokenService) (int64, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return tokens.Validate(cookie.Value)
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return tokens.Validate(token)
	}

	return 0, http.ErrNoCookie
}
