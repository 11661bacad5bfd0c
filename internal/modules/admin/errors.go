package admin

import (
	"fmt"

	"mathtutor/internal/pkg/apperr"
)

var (
	ErrUserNotFound = fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	ErrCannotBan    = fmt.Errorf("%w: admins cannot ban themselves or other admins", apperr.ErrForbidden)
	ErrAdminsOnly   = fmt.Errorf("%w: admin role required", apperr.ErrForbidden)
	ErrInvalidRole  = apperr.NewValidation("role", "must be STUDENT, TEACHER or ADMIN")
)
