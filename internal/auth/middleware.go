package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	userKey     contextKey = "user"
	rawTokenKey contextKey = "rawToken"
)

// extractToken pulls the access token from the Authorization header or
// the access_token cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}

// Middleware validates the JWT access token and puts the user into the
// request context. Requests without a valid token get a 401.
func Middleware(tokenGenerator *TokenGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"authentication required"}`))
				return
			}

			user, err := tokenGenerator.ValidateAccessToken(token)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid or expired token"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, rawTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalMiddleware puts the user into the request context when a
// valid token is present and lets anonymous requests through untouched.
func OptionalMiddleware(tokenGenerator *TokenGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token != "" {
				if user, err := tokenGenerator.ValidateAccessToken(token); err == nil {
					ctx := context.WithValue(r.Context(), userKey, user)
					ctx = context.WithValue(ctx, rawTokenKey, token)
					r = r.WithContext(ctx)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireVerified rejects authenticated users whose email address is
// not verified. Must run after Middleware.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok || !user.EmailVerified {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"email verification required"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetUser retrieves the authenticated user from context
func GetUser(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey).(User)
	return user, ok
}

// GetRawToken retrieves the raw bearer token from context, used when
// forwarding the caller's identity to internal services
func GetRawToken(ctx context.Context) string {
	if token, ok := ctx.Value(rawTokenKey).(string); ok {
		return token
	}
	return ""
}
