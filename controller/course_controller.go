// api/controller/course_controller.go
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

type CourseController struct {
	courseService service.ICourseService
}

func NewCourseController(courseService service.ICourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

func (cc *CourseController) RegisterRoutes(r *gin.RouterGroup) {
	courses := r.Group("/courses")
	{
		courses.POST("", cc.CreateCourse)
		courses.PUT("/:id", cc.UpdateCourse)
		courses.DELETE("/:id", cc.DeleteCourse)
		courses.GET("/:id", cc.GetCourse)
		courses.GET("", cc.ListCourses)
	}
}

func (cc *CourseController) CreateCourse(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var course model.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid course data", gurukul_errors.ErrInvalidCourseData)
		return
	}

	created, err := cc.courseService.CreateCourse(c.Request.Context(), course, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to create course")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (cc *CourseController) UpdateCourse(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid course id", err)
		return
	}

	var course model.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid course data", gurukul_errors.ErrInvalidCourseData)
		return
	}
	course.ID = id

	updated, err := cc.courseService.UpdateCourse(c.Request.Context(), course, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to update course")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (cc *CourseController) DeleteCourse(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid course id", err)
		return
	}

	if err := cc.courseService.DeleteCourse(c.Request.Context(), id, sc); err != nil {
		respondServiceError(c, err, "Failed to delete course")
		return
	}

	c.Status(http.StatusNoContent)
}

func (cc *CourseController) GetCourse(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid course id", err)
		return
	}

	course, err := cc.courseService.GetCourse(c.Request.Context(), id, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve course")
		return
	}

	c.JSON(http.StatusOK, course)
}

func (cc *CourseController) ListCourses(c *gin.Context) {
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

	courses, err := cc.courseService.SearchCourses(c.Request.Context(), criteria, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to list courses")
		return
	}

	c.JSON(http.StatusOK, courses)
}

func courseCriteriaFromQuery(c *gin.Context) (model.CourseSearchCriteria, error) {
	criteria := model.CourseSearchCriteria{
		Category:   c.Query("category"),
		SearchTerm: c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	var err error
	if criteria.Limit, criteria.Offset, err = helper_util.GetPaginationParams(c); err != nil {
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
