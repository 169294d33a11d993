package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campuspay/ledger/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	InitAuth(config.JWTConfig{SecretKey: "test-secret", AdminRole: "ledger_admin"})

	var captured *Principal
	handler := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		captured = nil
		token := signToken(t, "test-secret", jwt.MapClaims{
			"sub": "terminal-7",
			"exp": time.Now().Add(time.Hour).Unix(),
			"realm_access": map[string]interface{}{
				"roles": []interface{}{"pos_terminal", "ledger_admin"},
			},
		})

		r := httptest.NewRequest("GET", "/api/v1/accounts/card123", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotNil(t, captured)
		assert.Equal(t, "terminal-7", captured.Subject)
		assert.True(t, captured.HasRole("ledger_admin"))
		assert.False(t, captured.HasRole("other"))
	})

	t.Run("missing header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/accounts/card123", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/accounts/card123", nil)
		r.Header.Set("Authorization", "NotBearer token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong signature", func(t *testing.T) {
		token := signToken(t, "other-secret", jwt.MapClaims{
			"sub": "terminal-7",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		r := httptest.NewRequest("GET", "/api/v1/accounts/card123", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, "test-secret", jwt.MapClaims{
			"sub": "terminal-7",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		r := httptest.NewRequest("GET", "/api/v1/accounts/card123", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token without subject", func(t *testing.T) {
		token := signToken(t, "test-secret", jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		r := httptest.NewRequest("GET", "/api/v1/accounts/card123", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token without roles still authenticates", func(t *testing.T) {
		captured = nil
		token := signToken(t, "test-secret", jwt.MapClaims{
			"sub": "terminal-7",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		r := httptest.NewRequest("GET", "/api/v1/accounts/card123", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotNil(t, captured)
		assert.Empty(t, captured.Roles)
	})
}

func TestRequireAdmin(t *testing.T) {
	InitAuth(config.JWTConfig{SecretKey: "test-secret", AdminRole: "ledger_admin"})

	protected := AuthMiddleware(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("admin role passes", func(t *testing.T) {
		token := signToken(t, "test-secret", jwt.MapClaims{
			"sub": "ops-1",
			"exp": time.Now().Add(time.Hour).Unix(),
			"realm_access": map[string]interface{}{
				"roles": []interface{}{"ledger_admin"},
			},
		})

		r := httptest.NewRequest("POST", "/api/v1/admin/archive", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing role is forbidden", func(t *testing.T) {
		token := signToken(t, "test-secret", jwt.MapClaims{
			"sub": "terminal-7",
			"exp": time.Now().Add(time.Hour).Unix(),
			"realm_access": map[string]interface{}{
				"roles": []interface{}{"pos_terminal"},
			},
		})

		r := httptest.NewRequest("POST", "/api/v1/admin/archive", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no principal on context", func(t *testing.T) {
		bare := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest("POST", "/api/v1/admin/archive", nil)
		w := httptest.NewRecorder()

		bare.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
