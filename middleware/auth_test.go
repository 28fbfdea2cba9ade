// api/middleware/auth_test.go
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/middleware"
	"github.com/gurukul-labs/gurukul/api/scope"
	"github.com/gurukul-labs/gurukul/api/util"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitLogger(os.TempDir(), "error")
	defer logger.Sync()
	os.Exit(m.Run())
}

func uintPtr(v uint) *uint { return &v }

func signToken(t *testing.T, secret string, claims middleware.ScopeClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// newAuthRouter mounts a probe handler behind the middleware that echoes
// whether a scope landed on the context.
func newAuthRouter(captured *scope.Context) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Auth(testSecret))
	r.GET("/probe", func(c *gin.Context) {
		sc, err := util.GetScopeFromContext(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		*captured = sc
		c.Status(http.StatusOK)
	})
	return r
}

func probe(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_ValidToken(t *testing.T) {
	var captured scope.Context
	r := newAuthRouter(&captured)

	token := signToken(t, testSecret, middleware.ScopeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:      42,
		Role:        string(scope.RoleTeacher),
		InstituteID: uintPtr(7),
		ZoneID:      uintPtr(1),
	})

	w := probe(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), captured.UserID)
	assert.Equal(t, scope.RoleTeacher, captured.Role)
	require.NotNil(t, captured.InstituteID)
	assert.Equal(t, uint(7), *captured.InstituteID)
}

func TestAuth_MissingHeader(t *testing.T) {
	var captured scope.Context
	r := newAuthRouter(&captured)

	w := probe(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	var captured scope.Context
	r := newAuthRouter(&captured)

	token := signToken(t, testSecret, middleware.ScopeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: 42,
		Role:   string(scope.RoleTeacher),
	})

	w := probe(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestAuth_WrongSecret(t *testing.T) {
	var captured scope.Context
	r := newAuthRouter(&captured)

	token := signToken(t, "other-secret", middleware.ScopeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: 42,
		Role:   string(scope.RoleTeacher),
	})

	w := probe(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_MissingUserID(t *testing.T) {
	var captured scope.Context
	r := newAuthRouter(&captured)

	token := signToken(t, testSecret, middleware.ScopeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: string(scope.RoleTeacher),
	})

	w := probe(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_UnknownRoleFailsClosed(t *testing.T) {
	var captured scope.Context
	r := newAuthRouter(&captured)

	token := signToken(t, testSecret, middleware.ScopeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: 42,
		Role:   "janitor",
	})

	// The request is authenticated but the capabilities are all false, so
	// every scoped operation downstream refuses it.
	w := probe(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, captured.Capabilities.ManageContent)
	assert.False(t, captured.Capabilities.SeesAllRows)
	assert.False(t, captured.Capabilities.ViewStats)
}
