package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/edvin/identity/internal/api/response"
)

type contextKey string

// TenantUUIDKey carries the authenticated caller's tenant uuid. Federation
// always acts on the caller's own tenant, never on one named in the body.
const TenantUUIDKey contextKey = "tenant_uuid"

// AdminClaims are the claims the platform admin token must carry.
type AdminClaims struct {
	jwt.RegisteredClaims
	TenantID string `json:"custom:tenantid"`
}

// AdminAuth returns a middleware that validates the Authorization bearer
// token against the shared admin signing secret and stores the caller's
// tenant uuid in the request context.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims := &AdminClaims{}
			_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}
			if claims.TenantID == "" {
				response.WriteError(w, http.StatusUnauthorized, "token missing tenant claim")
				return
			}

			ctx := context.WithValue(r.Context(), TenantUUIDKey, claims.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantUUID returns the authenticated tenant uuid, if any.
func TenantUUID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(TenantUUIDKey).(string)
	return v, ok && v != ""
}
