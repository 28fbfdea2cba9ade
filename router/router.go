// api/router/router.go
package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gurukul-labs/gurukul/api/controller"
	"github.com/gurukul-labs/gurukul/api/middleware"
)

// SetupRouter wires the middleware chain and every controller under
// /api/v1. Auth runs on the versioned group, so every handler that reaches
// a service has a resolved caller scope.
func SetupRouter(
	controllers *controller.Controllers,
	jwtSecret string,
	rateLimitRequests int,
	rateLimitWindow time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitWindow))

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(jwtSecret))

	controllers.Zone.RegisterRoutes(api)
	controllers.Institute.RegisterRoutes(api)
	controllers.User.RegisterRoutes(api)
	controllers.Course.RegisterRoutes(api)
	controllers.Video.RegisterRoutes(api)
	controllers.Mobile.RegisterRoutes(api)
	controllers.CacheAdmin.RegisterRoutes(api)

	return router
}
