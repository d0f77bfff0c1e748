package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey      contextKey = "userID"
	UserEmailKey   contextKey = "userEmail"
	UserRoleKey    contextKey = "userRole"
	TokenClaimsKey contextKey = "jwtClaims"
)

const RoleAdmin = "admin"

func jwtKey() []byte {
	return []byte(os.Getenv("SECRET_KEY"))
}

// AuthMiddleware decodes a bearer token, when present, into the request
// context. Unauthenticated requests pass through untouched; handlers
// that need identity reject them individually.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			return jwtKey(), nil
		})
		if err != nil || !token.Valid {
			next.ServeHTTP(w, r)
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			ctx := context.WithValue(r.Context(), TokenClaimsKey, claims)

			if sub, ok := claims["sub"].(string); ok {
				if uid, err := uuid.Parse(sub); err == nil {
					ctx = context.WithValue(ctx, UserIDKey, uid)
				}
			}
			if email, ok := claims["email"].(string); ok {
				ctx = context.WithValue(ctx, UserEmailKey, email)
			}
			if role, ok := claims["role"].(string); ok {
				ctx = context.WithValue(ctx, UserRoleKey, role)
			}

			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	uid, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return uid, ok
}

func UserEmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

func IsAdmin(ctx context.Context) bool {
	role, ok := ctx.Value(UserRoleKey).(string)
	return ok && role == RoleAdmin
}
