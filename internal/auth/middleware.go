// Package auth binds the caller's tenant identity to the request context.
// When a JWT secret is configured the tenant id comes from the verified
// token; otherwise the handlers fall back to the id asserted in the payload.
package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/docrag/docrag/internal/tenant"
)

type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

type JWTMiddleware struct {
	secret []byte
}

func NewJWTMiddleware(secret string) *JWTMiddleware {
	return &JWTMiddleware{secret: []byte(secret)}
}

// Enabled reports whether token verification is configured.
func (m *JWTMiddleware) Enabled() bool {
	return len(m.secret) > 0
}

// Authenticate verifies the bearer token and puts the tenant id into the
// request context. With no secret configured the middleware is a passthrough
// and handlers read the tenant id from the request payload instead.
func (m *JWTMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		tokenStr := extractBearerToken(r)
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
			writeError(w, http.StatusUnauthorized, "token expired")
			return
		}

		tenantID := claims.TenantID
		if tenantID == "" {
			tenantID = claims.Subject
		}
		if tenantID == "" {
			writeError(w, http.StatusUnauthorized, "token carries no tenant identity")
			return
		}

		next.ServeHTTP(w, r.WithContext(tenant.WithID(r.Context(), tenantID)))
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
