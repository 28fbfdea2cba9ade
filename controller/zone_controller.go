// api/controller/zone_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	"github.com/gurukul-labs/gurukul/api/model"
	"github.com/gurukul-labs/gurukul/api/service"
	"github.com/gurukul-labs/gurukul/api/util"
	helper_util "github.com/gurukul-labs/gurukul/api/util/helper"
)

type ZoneController struct {
	zoneService service.IZoneService
}

func NewZoneController(zoneService service.IZoneService) *ZoneController {
	return &ZoneController{zoneService: zoneService}
}

func (zc *ZoneController) RegisterRoutes(r *gin.RouterGroup) {
	zones := r.Group("/zones")
	{
		zones.POST("", zc.CreateZone)
		zones.PUT("/:id", zc.UpdateZone)
		zones.DELETE("/:id", zc.DeleteZone)
		zones.GET("/:id", zc.GetZone)
		zones.GET("", zc.ListZones)
	}
}

func (zc *ZoneController) CreateZone(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var zone model.Zone
	if err := c.ShouldBindJSON(&zone); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid zone data", gurukul_errors.ErrInvalidZoneData)
		return
	}

	created, err := zc.zoneService.CreateZone(c.Request.Context(), zone, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to create zone")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (zc *ZoneController) UpdateZone(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid zone id", err)
		return
	}

	var zone model.Zone
	if err := c.ShouldBindJSON(&zone); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid zone data", gurukul_errors.ErrInvalidZoneData)
		return
	}
	zone.ID = id

	updated, err := zc.zoneService.UpdateZone(c.Request.Context(), zone, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to update zone")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (zc *ZoneController) DeleteZone(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid zone id", err)
		return
	}

	if err := zc.zoneService.DeleteZone(c.Request.Context(), id, sc); err != nil {
		respondServiceError(c, err, "Failed to delete zone")
		return
	}

	c.Status(http.StatusNoContent)
}

func (zc *ZoneController) GetZone(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid zone id", err)
		return
	}

	zone, err := zc.zoneService.GetZone(c.Request.Context(), id, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve zone")
		return
	}

	c.JSON(http.StatusOK, zone)
}

func (zc *ZoneController) ListZones(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	criteria := model.ZoneSearchCriteria{
		SearchTerm: c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	if criteria.Limit, criteria.Offset, err = helper_util.GetPaginationParams(c); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}
	if criteria.Active, err = helper_util.BoolQueryParam(c, "active"); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid active parameter", err)
		return
	}

	zones, err := zc.zoneService.SearchZones(c.Request.Context(), criteria, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to list zones")
		return
	}

	c.JSON(http.StatusOK, zones)
}
