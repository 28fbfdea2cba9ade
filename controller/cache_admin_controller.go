// api/controller/cache_admin_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gurukul-labs/gurukul/api/cache"
	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	"github.com/gurukul-labs/gurukul/api/util"
)

// CacheAdminController exposes the cache tiers for observability: stats,
// entry listings and manual clears. All of it is gated on the
// cache-administration capability.
type CacheAdminController struct {
	caches *cache.Caches
}

func NewCacheAdminController(caches *cache.Caches) *CacheAdminController {
	return &CacheAdminController{caches: caches}
}

func (cac *CacheAdminController) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin/caches")
	{
		admin.GET("", cac.ListStats)
		admin.GET("/:name/entries", cac.ListEntries)
		admin.POST("/:name/clear", cac.ClearCache)
	}
}

func (cac *CacheAdminController) ListStats(c *gin.Context) {
	if !cac.authorized(c) {
		return
	}

	stats := make([]cache.Stats, 0, len(cac.caches.All()))
	for _, instance := range cac.caches.All() {
		stats = append(stats, instance.Stats())
	}
	c.JSON(http.StatusOK, stats)
}

func (cac *CacheAdminController) ListEntries(c *gin.Context) {
	if !cac.authorized(c) {
		return
	}

	instance, ok := cac.caches.ByName(c.Param("name"))
	if !ok {
		util.RespondWithError(c, http.StatusNotFound, "Cache not found", gurukul_errors.ErrCacheNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cache":   instance.Name(),
		"entries": instance.Entries(),
	})
}

func (cac *CacheAdminController) ClearCache(c *gin.Context) {
	if !cac.authorized(c) {
		return
	}

	instance, ok := cac.caches.ByName(c.Param("name"))
	if !ok {
		util.RespondWithError(c, http.StatusNotFound, "Cache not found", gurukul_errors.ErrCacheNotFound)
		return
	}

	instance.Clear()
	c.JSON(http.StatusOK, gin.H{"cache": instance.Name(), "cleared": true})
}

func (cac *CacheAdminController) authorized(c *gin.Context) bool {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return false
	}
	if !sc.Capabilities.AdministerCaches {
		util.RespondWithError(c, http.StatusForbidden, "Cache administration requires super admin", gurukul_errors.ErrScopeForbidden)
		return false
	}
	return true
}
