package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/campuspay/ledger/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Principal is the validated caller identity. The ledger core never
// authenticates; it trusts this pre-validated identity.
type Principal struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the principal carries the role
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type contextKey string

const principalKey contextKey = "principal"

var (
	jwtSecret []byte
	adminRole = "admin"
)

// InitAuth configures token verification
func InitAuth(cfg config.JWTConfig) {
	jwtSecret = []byte(cfg.SecretKey)
	if cfg.AdminRole != "" {
		adminRole = cfg.AdminRole
	}
}

// AuthMiddleware validates the bearer token and stores the principal on the
// request context
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		principal, err := validateToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects principals without the admin role. Must run inside
// AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}
		if !principal.HasRole(adminRole) {
			http.Error(w, "Admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromContext returns the validated caller, if any
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalKey).(*Principal)
	return principal, ok
}

func validateToken(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, errors.New("token has no subject")
	}

	return &Principal{Subject: subject, Roles: extractRoles(claims)}, nil
}

// extractRoles reads the Keycloak-shaped realm_access.roles claim
func extractRoles(claims jwt.MapClaims) []string {
	realm, ok := claims["realm_access"].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := realm["roles"].([]interface{})
	if !ok {
		return nil
	}

	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if role, ok := r.(string); ok {
			roles = append(roles, role)
		}
	}
	return roles
}
