// api/controller/user_controller.go
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

type UserController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) *UserController {
	return &UserController{userService: userService}
}

func (uc *UserController) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("", uc.CreateUser)
		users.PUT("/:id", uc.UpdateUser)
		users.DELETE("/:id", uc.DeleteUser)
		users.POST("/bulk-deactivate", uc.BulkDeactivateUsers)
		users.GET("/:id", uc.GetUser)
		users.GET("", uc.ListUsers)
	}
}

func (uc *UserController) CreateUser(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var user model.User
	if err := c.ShouldBindJSON(&user); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", gurukul_errors.ErrInvalidUserData)
		return
	}

	created, err := uc.userService.CreateUser(c.Request.Context(), user, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	var user model.User
	if err := c.ShouldBindJSON(&user); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", gurukul_errors.ErrInvalidUserData)
		return
	}
	user.ID = id

	updated, err := uc.userService.UpdateUser(c.Request.Context(), user, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	if err := uc.userService.DeleteUser(c.Request.Context(), id, sc); err != nil {
		respondServiceError(c, err, "Failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}

func (uc *UserController) BulkDeactivateUsers(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req model.UserBulkDeactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid bulk deactivate request", err)
		return
	}

	check, err := uc.userService.BulkDeactivateUsers(c.Request.Context(), req, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to bulk deactivate users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deactivated_ids": check.ValidIDs,
		"invalid_ids":     check.InvalidIDs,
		"invalid_count":   len(check.InvalidIDs),
	})
}

func (uc *UserController) GetUser(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := helper_util.UintParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	user, err := uc.userService.GetUser(c.Request.Context(), id, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve user")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (uc *UserController) ListUsers(c *gin.Context) {
	sc, err := util.GetScopeFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	criteria := model.UserSearchCriteria{
		Role:       c.Query("role"),
		SearchTerm: c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	if criteria.Limit, criteria.Offset, err = helper_util.GetPaginationParams(c); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}
	if criteria.InstituteID, err = helper_util.UintQueryParam(c, "institute_id"); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid institute_id parameter", err)
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

	users, err := uc.userService.SearchUsers(c.Request.Context(), criteria, sc)
	if err != nil {
		respondServiceError(c, err, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, users)
}
