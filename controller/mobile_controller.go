// api/controller/mobile_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gurukul-labs/gurukul/api/service"
	"github.com/gurukul-labs/gurukul/api/util"
)

// MobileController serves the learner apps: public course/video listings
// and the caller's own profile.
type MobileController struct {
	mobileService service.IMobileService
}

func NewMobileController(mobileService service.IMobileService) *MobileController {
	return &MobileController{mobileService: mobileService}
}

func (mc *MobileController) RegisterRoutes(r *gin.RouterGroup) {
	mobile := r.Group("/mobile")
	{
		mobile.GET("/courses", mc.ListCourses)
		mobile.GET("/videos", mc.ListVideos)
		mobile.GET("/profile", mc.Profile)
	}
}

func (mc *MobileController) ListCourses(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	criteria, err := courseCriteriaFromQuery(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	courses, err := mc.mobileService.ListCourses(c.Request.Context(), criteria, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to list courses")
		return
	}

	c.JSON(http.StatusOK, courses)
}

func (mc *MobileController) ListVideos(c *gin.Context) {
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

	videos, err := mc.mobileService.ListVideos(c.Request.Context(), criteria, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to list videos")
		return
	}

	c.JSON(http.StatusOK, videos)
}

func (mc *MobileController) Profile(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	profile, err := mc.mobileService.Profile(c.Request.Context(), sc)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}
