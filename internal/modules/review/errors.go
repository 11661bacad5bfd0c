package review

import (
	"fmt"

	"mathtutor/internal/pkg/apperr"
)

var (
	ErrStudentsOnly       = fmt.Errorf("%w: only students can endorse or rate", apperr.ErrForbidden)
	ErrTeacherNotFound    = fmt.Errorf("%w: teacher not found", apperr.ErrNotFound)
	ErrNoCompletedSession = fmt.Errorf("%w: endorse a teacher after a completed session", apperr.ErrForbidden)
	ErrAlreadyEndorsed    = fmt.Errorf("%w: you already endorsed this teacher", apperr.ErrConflict)
	ErrOrderNotFound      = fmt.Errorf("%w: order not found", apperr.ErrNotFound)
	ErrNotRateable        = fmt.Errorf("%w: only completed orders can be rated", apperr.ErrInvalidState)
	ErrAlreadyRated       = fmt.Errorf("%w: order already rated", apperr.ErrConflict)
)
