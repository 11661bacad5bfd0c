package order

import (
	"fmt"

	"mathtutor/internal/pkg/apperr"
)

var (
	ErrOrderNotFound      = fmt.Errorf("%w: order not found", apperr.ErrNotFound)
	ErrSlotNotFound       = fmt.Errorf("%w: time slot not found", apperr.ErrNotFound)
	ErrForbidden          = fmt.Errorf("%w: not allowed to perform this action", apperr.ErrForbidden)
	ErrInvalidTransition  = fmt.Errorf("%w: action not allowed in current status", apperr.ErrInvalidState)
	ErrDeadlinePassed     = fmt.Errorf("%w: response deadline has passed", apperr.ErrInvalidState)
	ErrDeadlineNotReached = fmt.Errorf("%w: response deadline has not passed yet", apperr.ErrInvalidState)
	ErrNotPaid            = fmt.Errorf("%w: payment not completed", apperr.ErrInvalidState)
	ErrUnknownAction      = apperr.NewValidation("action", "unknown action")
	ErrAnswerRequired     = apperr.NewValidation("answer", "at least one of text, image_url, audio_url, video_url is required")
)
