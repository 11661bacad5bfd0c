package auth

import (
	"fmt"

	"mathtutor/internal/pkg/apperr"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthorized)
	ErrEmailAlreadyExists = fmt.Errorf("%w: email already registered", apperr.ErrConflict)
	ErrAccountBanned      = fmt.Errorf("%w: account is banned", apperr.ErrForbidden)
	ErrRoleNotAllowed     = apperr.NewValidation("role", "must be STUDENT or TEACHER")
	ErrCodeRequired       = apperr.NewValidation("code", "teacher signup requires a verification code")
	ErrInvalidCodeFormat  = apperr.NewValidation("code", "must be 6 digits")
	ErrInvalidCode        = fmt.Errorf("%w: verification code is invalid or expired", apperr.ErrUnauthorized)
	ErrTooManyAttempts    = fmt.Errorf("%w: too many verification attempts", apperr.ErrForbidden)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", apperr.ErrNotFound)
)
