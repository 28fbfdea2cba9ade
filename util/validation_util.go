// api/util/validation_util.go
package util

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/gurukul-labs/gurukul/api/model"
	"github.com/gurukul-labs/gurukul/api/scope"
)

// ValidationUtil runs the struct-tag rules plus the cross-field business
// rules the tags cannot express.
type ValidationUtil struct {
	validate *validator.Validate
}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{validate: validator.New()}
}

func (v *ValidationUtil) ValidateZone(zone model.Zone) error {
	return v.validate.Struct(zone)
}

func (v *ValidationUtil) ValidateInstitute(institute model.Institute) error {
	return v.validate.Struct(institute)
}

func (v *ValidationUtil) ValidateUser(user model.User) error {
	if err := v.validate.Struct(user); err != nil {
		return err
	}
	if !scope.ValidRole(scope.Role(user.Role)) {
		return fmt.Errorf("unknown role %q", user.Role)
	}
	return nil
}

func (v *ValidationUtil) ValidateCourse(course model.Course) error {
	if err := v.validate.Struct(course); err != nil {
		return err
	}
	if course.InstituteID == nil {
		return fmt.Errorf("course must belong to an institute")
	}
	return nil
}

func (v *ValidationUtil) ValidateVideo(video model.Video) error {
	if err := v.validate.Struct(video); err != nil {
		return err
	}
	if video.InstituteID == nil {
		return fmt.Errorf("video must belong to an institute")
	}
	return nil
}
