package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramseva/office-portal-api/internal/models"
	"github.com/gramseva/office-portal-api/internal/service"
)

type noUserRepo struct{}

func (noUserRepo) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (noUserRepo) FindConflict(ctx context.Context, email, handle, contactNumber string) (string, error) {
	return "", nil
}

func (noUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authService := service.NewAuthService(noUserRepo{}, nil, service.AuthConfig{
		TokenSecret:   "test-secret",
		TokenExpiry:   time.Hour,
		Issuer:        "office-portal",
		AdminUsername: "admin",
		AdminPassword: "admin-pass",
	})

	r := gin.New()
	authed := r.Group("/", JWT(authService))
	authed.GET("/me", func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.UserID)
	})
	authed.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, authService
}

func adminToken(t *testing.T, authService *service.AuthService) string {
	t.Helper()
	res, err := authService.AdminLogin(context.Background(), models.AdminLoginRequest{
		Username: "admin",
		Password: "admin-pass",
	})
	require.NoError(t, err)
	return res.Token
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsGarbageToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAttachesClaims(t *testing.T) {
	r, authService := newTestRouter(t)
	token := adminToken(t, authService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
}

func TestRequireAdminAllowsAdministrator(t *testing.T) {
	r, authService := newTestRouter(t)
	token := adminToken(t, authService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/admin", nil)

	RequireAdmin()(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
