// api/controller/controllers.go

// Package controller translates HTTP to service calls: bind the payload,
// pull the caller scope the auth middleware resolved, dispatch, map the
// outcome to a status code.
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gurukul-labs/gurukul/api/cache"
	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	"github.com/gurukul-labs/gurukul/api/service"
	"github.com/gurukul-labs/gurukul/api/util"
)

type Controllers struct {
	Zone       *ZoneController
	Institute  *InstituteController
	User       *UserController
	Course     *CourseController
	Video      *VideoController
	Mobile     *MobileController
	CacheAdmin *CacheAdminController
}

func InitializeControllers(services *service.Services, caches *cache.Caches) *Controllers {
	return &Controllers{
		Zone:       NewZoneController(services.Zone),
		Institute:  NewInstituteController(services.Institute),
		User:       NewUserController(services.User),
		Course:     NewCourseController(services.Course),
		Video:      NewVideoController(services.Video),
		Mobile:     NewMobileController(services.Mobile),
		CacheAdmin: NewCacheAdminController(caches),
	}
}

// respondServiceError maps a service error to a status code. Scope
// failures are 403, distinct from 404: "not yours" is a permission fact,
// not an existence fact.
func respondServiceError(c *gin.Context, err error, message string) {
	var perr *gurukul_errors.PartialAuthorizationError
	switch {
	case errors.As(err, &perr):
		util.RespondWithPartialAuthorization(c, perr)
	case errors.Is(err, gurukul_errors.ErrScopeForbidden):
		util.RespondWithError(c, http.StatusForbidden, "Request outside your scope", err)
	case isNotFound(err):
		util.RespondWithError(c, http.StatusNotFound, message, err)
	case isConflict(err):
		util.RespondWithError(c, http.StatusConflict, message, err)
	case isInvalidData(err):
		util.RespondWithError(c, http.StatusBadRequest, message, err)
	case errors.Is(err, gurukul_errors.ErrResourceBusy):
		util.RespondWithError(c, http.StatusConflict, "Resource busy, retry shortly", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, message, err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gurukul_errors.ErrZoneNotFound) ||
		errors.Is(err, gurukul_errors.ErrInstituteNotFound) ||
		errors.Is(err, gurukul_errors.ErrUserNotFound) ||
		errors.Is(err, gurukul_errors.ErrCourseNotFound) ||
		errors.Is(err, gurukul_errors.ErrVideoNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, gurukul_errors.ErrZoneConflict) ||
		errors.Is(err, gurukul_errors.ErrInstituteConflict) ||
		errors.Is(err, gurukul_errors.ErrUserConflict) ||
		errors.Is(err, gurukul_errors.ErrCourseConflict) ||
		errors.Is(err, gurukul_errors.ErrVideoConflict)
}

func isInvalidData(err error) bool {
	return errors.Is(err, gurukul_errors.ErrInvalidZoneData) ||
		errors.Is(err, gurukul_errors.ErrInvalidInstituteData) ||
		errors.Is(err, gurukul_errors.ErrInvalidUserData) ||
		errors.Is(err, gurukul_errors.ErrInvalidCourseData) ||
		errors.Is(err, gurukul_errors.ErrInvalidVideoData)
}
