// api/middleware/auth.go
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/scope"
	"github.com/gurukul-labs/gurukul/api/util"
)

// ScopeClaims are the tenancy claims the identity service puts in its
// tokens. This API only verifies; it never issues.
type ScopeClaims struct {
	jwt.RegisteredClaims
	UserID      uint   `json:"uid"`
	Role        string `json:"role"`
	InstituteID *uint  `json:"institute_id,omitempty"`
	ZoneID      *uint  `json:"zone_id,omitempty"`
}

// Auth verifies the bearer token and resolves the caller's scope.Context
// onto the gin context. Every scoped handler downstream reads it from
// there; no handler touches the database without one. An unknown role
// string still produces a context, one that fails closed everywhere.
func Auth(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Missing authorization token", gurukul_errors.ErrMissingToken)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &ScopeClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortUnauthorized(c, "Token has expired", gurukul_errors.ErrExpiredToken)
				return
			}
			abortUnauthorized(c, "Invalid token", gurukul_errors.ErrInvalidToken)
			return
		}
		if !token.Valid || claims.UserID == 0 {
			abortUnauthorized(c, "Invalid token", gurukul_errors.ErrInvalidToken)
			return
		}

		sc := scope.NewContext(claims.UserID, scope.Role(claims.Role), claims.InstituteID, claims.ZoneID)
		if !scope.ValidRole(sc.Role) {
			logger.Warn("Token carries unknown role; caller will fail closed",
				zap.Uint("userID", sc.UserID),
				zap.String("role", claims.Role))
		}

		c.Set(util.ScopeContextKey, sc)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string, err error) {
	logger.Warn(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("ip", c.ClientIP()))
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	c.Abort()
}
