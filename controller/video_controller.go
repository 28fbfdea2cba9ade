// api/controller/video_controller.go
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

type VideoController struct {
	videoService service.IVideoService
}

func NewVideoController(videoService service.IVideoService) *VideoController {
	return &VideoController{videoService: videoService}
}

func (vc *VideoController) RegisterRoutes(r *gin.RouterGroup) {
	videos := r.Group("/videos")
	{
		videos.POST("", vc.CreateVideo)
		videos.PUT("/:id", vc.UpdateVideo)
		videos.DELETE("/:id", vc.DeleteVideo)
		videos.POST("/bulk-delete", vc.BulkDeleteVideos)
		videos.GET("/stats", vc.VideoStats)
		videos.GET("/:id", vc.GetVideo)
		videos.GET("", vc.ListVideos)
	}
}

func (vc *VideoController) CreateVideo(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var video model.Video
	if err := c.ShouldBindJSON(&video); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid video data", gurukul_errors.ErrInvalidVideoData)
		return
	}

	created, err := vc.videoService.CreateVideo(c.Request.Context(), video, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to create video")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (vc *VideoController) UpdateVideo(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid video id", err)
		return
	}

	var video model.Video
	if err := c.ShouldBindJSON(&video); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid video data", gurukul_errors.ErrInvalidVideoData)
		return
	}
	video.ID = id

	updated, err := vc.videoService.UpdateVideo(c.Request.Context(), video, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to update video")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (vc *VideoController) DeleteVideo(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid video id", err)
		return
	}

	if err := vc.videoService.DeleteVideo(c.Request.Context(), id, sc); err != nil {
		respondServiceError(c, err, "Failed to delete video")
		return
	}

	c.Status(http.StatusNoContent)
}

func (vc *VideoController) BulkDeleteVideos(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req model.VideoBulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid bulk delete request", err)
		return
	}

	check, err := vc.videoService.BulkDeleteVideos(c.Request.Context(), req, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to bulk delete videos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted_ids":   check.ValidIDs,
		"invalid_ids":   check.InvalidIDs,
		"invalid_count": len(check.InvalidIDs),
	})
}

func (vc *VideoController) GetVideo(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid video id", err)
		return
	}

	video, err := vc.videoService.GetVideo(c.Request.Context(), id, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve video")
		return
	}

	c.JSON(http.StatusOK, video)
}

func (vc *VideoController) ListVideos(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	criteria, err := videoCriteriaFromQuery(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	videos, err := vc.videoService.SearchVideos(c.Request.Context(), criteria, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to list videos")
		return
	}

	c.JSON(http.StatusOK, videos)
}

func (vc *VideoController) VideoStats(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	stats, err := vc.videoService.VideoStats(c.Request.Context(), sc)
	if err != nil {
		respondServiceError(c, err, "Failed to compute video stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func videoCriteriaFromQuery(c *gin.Context) (model.VideoSearchCriteria, error) {
	criteria := model.VideoSearchCriteria{
		Category:   c.Query("category"),
		SearchTerm: c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	var err error
	if criteria.Limit, criteria.Offset, err = helper_util.GetPaginationParams(c); err != nil {
		return criteria, err
	}
	if criteria.CourseID, err = helper_util.UintQueryParam(c, "course_id"); err != nil {
		return criteria, err
	}
	if criteria.InstituteID, err = helper_util.UintQueryParam(c, "institute_id"); err != nil {
		return criteria, err
	}
	if criteria.ZoneID, err = helper_util.UintQueryParam(c, "zone_id"); err != nil {
		return criteria, err
	}
	if criteria.Active, err = helper_util.BoolQueryParam(c, "active"); err != nil {
		return criteria, err
	}
	return criteria, nil
}
