package auth

import (
	"errors"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/videotube-server/internal/errors"
	"github.com/jrsteele09/videotube-server/users"
)

const (
	tagEmail    = "emailaddr"
	tagPassword = "strongpassword"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation(tagEmail, func(fl validator.FieldLevel) bool {
		return users.ValidEmail(fl.Field().String())
	})
	v.RegisterValidation(tagPassword, func(fl validator.FieldLevel) bool {
		return users.ValidatePasswordStrength(fl.Field().String()) == nil
	})
	return v
}

type registrationFields struct {
	Username string `validate:"required"`
	Email    string `validate:"required,emailaddr"`
	FullName string `validate:"required"`
	Password string `validate:"required,strongpassword"`
}

type loginFields struct {
	Username string `validate:"required_without=Email"`
	Email    string `validate:"required_without=Username"`
}

type passwordChangeFields struct {
	OldPassword string `validate:"required"`
	NewPassword string `validate:"required"`
}

type detailsFields struct {
	FullName string `validate:"required_without=Email"`
	Email    string `validate:"required_without=FullName,omitempty,emailaddr"`
}

// check validates s and converts the first failure into a BadRequest.
// A missing field wins over a malformed one; requiredMsg is used for it.
func check(s any, requiredMsg string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Internal("Something went wrong", err)
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" || fe.Tag() == "required_without" {
			return apperrors.BadRequest(requiredMsg, err)
		}
	}

	switch fieldErrs[0].Tag() {
	case tagEmail:
		return apperrors.BadRequest(msgInvalidEmail, err)
	case tagPassword:
		return apperrors.BadRequest(users.ErrWeakPassword.Error(), users.ErrWeakPassword)
	default:
		return apperrors.BadRequest(fieldErrs[0].Error(), err)
	}
}
