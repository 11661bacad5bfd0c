package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"mathtutor/internal/pkg/apperr"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate struct fields. Returns nil or an *apperr.ValidationError keyed by
// field name with the failed tag as message.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &apperr.ValidationError{}
	for _, fe := range fieldErrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out.Add(fe.Field(), msg)
	}
	return out
}
