// api/controller/institute_controller.go
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

type InstituteController struct {
	instituteService service.IInstituteService
}

func NewInstituteController(instituteService service.IInstituteService) *InstituteController {
	return &InstituteController{instituteService: instituteService}
}

func (ic *InstituteController) RegisterRoutes(r *gin.RouterGroup) {
	institutes := r.Group("/institutes")
	{
		institutes.POST("", ic.CreateInstitute)
		institutes.PUT("/:id", ic.UpdateInstitute)
		institutes.DELETE("/:id", ic.DeleteInstitute)
		institutes.POST("/bulk-status", ic.BulkSetStatus)
		institutes.GET("/:id/stats", ic.InstituteStats)
		institutes.GET("/:id", ic.GetInstitute)
		institutes.GET("", ic.ListInstitutes)
	}
}

func (ic *InstituteController) CreateInstitute(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var institute model.Institute
	if err := c.ShouldBindJSON(&institute); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid institute data", gurukul_errors.ErrInvalidInstituteData)
		return
	}

	created, err := ic.instituteService.CreateInstitute(c.Request.Context(), institute, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to create institute")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (ic *InstituteController) UpdateInstitute(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid institute id", err)
		return
	}

	var institute model.Institute
	if err := c.ShouldBindJSON(&institute); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid institute data", gurukul_errors.ErrInvalidInstituteData)
		return
	}
	institute.ID = id

	updated, err := ic.instituteService.UpdateInstitute(c.Request.Context(), institute, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to update institute")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (ic *InstituteController) DeleteInstitute(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid institute id", err)
		return
	}

	if err := ic.instituteService.DeleteInstitute(c.Request.Context(), id, sc); err != nil {
		respondServiceError(c, err, "Failed to delete institute")
		return
	}

	c.Status(http.StatusNoContent)
}

func (ic *InstituteController) BulkSetStatus(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req model.InstituteBulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid bulk status request", err)
		return
	}

	check, err := ic.instituteService.BulkSetStatus(c.Request.Context(), req, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to update institute status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated_ids":   check.ValidIDs,
		"invalid_ids":   check.InvalidIDs,
		"invalid_count": len(check.InvalidIDs),
	})
}

func (ic *InstituteController) GetInstitute(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid institute id", err)
		return
	}

	institute, err := ic.instituteService.GetInstitute(c.Request.Context(), id, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve institute")
		return
	}

	c.JSON(http.StatusOK, institute)
}

func (ic *InstituteController) ListInstitutes(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	criteria := model.InstituteSearchCriteria{
		SearchTerm: c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	if criteria.Limit, criteria.Offset, err = helper_util.GetPaginationParams(c); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}
	if criteria.ZoneID, err = helper_util.UintQueryParam(c, "zone_id"); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid zone_id parameter", err)
		return
	}
	if criteria.Active, err = helper_util.BoolQueryParam(c, "active"); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid active parameter", err)
		return
	}

	institutes, err := ic.instituteService.SearchInstitutes(c.Request.Context(), criteria, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to list institutes")
		return
	}

	c.JSON(http.StatusOK, institutes)
}

func (ic *InstituteController) InstituteStats(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid institute id", err)
		return
	}

	stats, err := ic.instituteService.InstituteStats(c.Request.Context(), id, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to compute institute stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
