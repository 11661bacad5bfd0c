package catalog

import (
	"fmt"

	"mathtutor/internal/pkg/apperr"
)

var (
	ErrTeachersOnly      = fmt.Errorf("%w: only teachers can publish courses", apperr.ErrForbidden)
	ErrAuthorsOnly       = fmt.Errorf("%w: only teachers and admins can author challenges", apperr.ErrForbidden)
	ErrStudentsOnly      = fmt.Errorf("%w: only students can attempt challenges", apperr.ErrForbidden)
	ErrChallengeNotFound = fmt.Errorf("%w: challenge not found", apperr.ErrNotFound)
)
