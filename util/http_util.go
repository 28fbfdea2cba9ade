// api/util/http_util.go
package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/scope"
)

// ScopeContextKey is where the auth middleware parks the caller scope on
// the gin context.
const ScopeContextKey = "scopeContext"

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// RespondWithPartialAuthorization returns the 403 a bulk caller gets when
// some target ids were outside their scope and they did not opt into
// partial application.
func RespondWithPartialAuthorization(c *gin.Context, perr *gurukul_errors.PartialAuthorizationError) {
	logger.Warn("Bulk operation partly outside caller scope",
		zap.String("path", c.Request.URL.Path),
		zap.Int("requested", perr.RequestedCount),
		zap.Int("invalid", perr.InvalidCount))
	c.JSON(http.StatusForbidden, gin.H{
		"error":   "some target ids are outside your scope",
		"details": perr,
	})
}

// GetScopeFromContext returns the caller scope the auth middleware stored.
func GetScopeFromContext(c *gin.Context) (scope.Context, error) {
	v, exists := c.Get(ScopeContextKey)
	if !exists {
		return scope.Context{}, gurukul_errors.ErrMissingScope
	}
	sc, ok := v.(scope.Context)
	if !ok {
		return scope.Context{}, gurukul_errors.ErrMissingScope
	}
	return sc, nil
}
