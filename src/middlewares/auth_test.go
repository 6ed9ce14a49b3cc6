package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasnasmay/altess-final-sub004/src/types"
)

const testJWTSecret = "test-secret"

func signToken(t *testing.T, secret string, claims types.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(role string, permissions ...string) types.Claims {
	return types.Claims{
		Username:    "ops@altess.test",
		Role:        role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func adminRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecureHeaders)
	r.GET("/admin", AdminMiddleware, func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	return r
}

func TestAdminMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)
	r := adminRouter()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", claimsFor(RoleAdmin)), http.StatusUnauthorized},
		{"organizer", "Bearer " + signToken(t, testJWTSecret, claimsFor("organizer")), http.StatusForbidden},
		{"admin", "Bearer " + signToken(t, testJWTSecret, claimsFor(RoleAdmin)), http.StatusNoContent},
		{"support with permission", "Bearer " + signToken(t, testJWTSecret, claimsFor("support", "tickets:notify")), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)
	claims := claimsFor(RoleAdmin)
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret, claims))
	adminRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddlewareWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	r := adminRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "", claimsFor(RoleAdmin)))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
