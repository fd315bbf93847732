package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/classhub/classroom-api/internal/models"
	"github.com/classhub/classroom-api/internal/service"
	"github.com/classhub/classroom-api/pkg/config"
)

func newProtectedRouter(authService *service.AuthService, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", JWT(authService))
	if len(roles) > 0 {
		group.Use(RequireRoles(roles...))
	}
	group.GET("/secure", func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	return r
}

func issueToken(t *testing.T, secret string, role models.UserRole) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID:   "u1",
		FullName: "Jordan Smith",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	r := newProtectedRouter(service.NewAuthService(config.JWTConfig{Secret: "s3cret"}, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareMalformedHeader(t *testing.T) {
	r := newProtectedRouter(service.NewAuthService(config.JWTConfig{Secret: "s3cret"}, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	authService := service.NewAuthService(config.JWTConfig{Secret: "s3cret"}, nil)
	r := newProtectedRouter(authService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "s3cret", models.RoleTeacher))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "u1")
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	authService := service.NewAuthService(config.JWTConfig{Secret: "s3cret"}, nil)
	r := newProtectedRouter(authService, models.RoleTeacher, models.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "s3cret", models.RoleAdmin))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesBlocksOtherRoles(t *testing.T) {
	authService := service.NewAuthService(config.JWTConfig{Secret: "s3cret"}, nil)
	r := newProtectedRouter(authService, models.RoleTeacher, models.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "s3cret", models.RoleStudent))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}
