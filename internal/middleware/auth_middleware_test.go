package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"beacon-chat/config"
	"beacon-chat/internal/domain/account"
	"beacon-chat/internal/services"
	"beacon-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func newTestAuthMiddleware() gin.HandlerFunc {
	cfg := &config.Config{JWTSecret: testJWTSecret, JWTExpiryMin: 60, AdminJWTExpiryMin: 10}
	return AuthMiddleware(services.NewAuthService(nil, cfg))
}

func signTestToken(t *testing.T, accountID uuid.UUID) string {
	t.Helper()
	claims := services.AccessClaims{
		AccountID: accountID.String(),
		Kind:      account.KindUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

// The middleware installs the identity twice: once for the services layer
// and once under the logger key so request logs carry the account id.
func TestAuthMiddlewareInstallsIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	accountID := uuid.New()

	var gotID uuid.UUID
	var gotKind string
	var gotLogID string

	r := gin.New()
	r.Use(newTestAuthMiddleware())
	r.GET("/me", func(c *gin.Context) {
		ctx := c.Request.Context()
		id, ok := services.AccountIDFromContext(ctx)
		require.True(t, ok)
		gotID = id
		gotKind, _ = services.AccountKindFromContext(ctx)
		gotLogID, _ = ctx.Value(logger.AccountIdKey).(string)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, accountID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, accountID, gotID)
	assert.Equal(t, account.KindUser, gotKind)
	assert.Equal(t, accountID.String(), gotLogID)
}

func TestAuthMiddlewareRejectsBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(newTestAuthMiddleware())
	r.GET("/me", func(c *gin.Context) {
		t.Fatal("handler must not run without a valid token")
	})

	for _, header := range []string{"", "Bearer not-a-token", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}
