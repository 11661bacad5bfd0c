package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mathtutor/internal/pkg/apperr"
)

type sample struct {
	Email string  `validate:"required,email"`
	Price float64 `validate:"gte=5"`
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(sample{Email: "a@b.co", Price: 5}))

	err := Validate(sample{Email: "nope", Price: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	var vErr *apperr.ValidationError
	if assert.ErrorAs(t, err, &vErr) {
		assert.Equal(t, "email", vErr.FieldErrors["Email"])
		assert.Equal(t, "gte=5", vErr.FieldErrors["Price"])
	}
}
