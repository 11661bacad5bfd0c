package question

import (
	"fmt"

	"mathtutor/internal/pkg/apperr"
)

var (
	ErrStudentsOnly    = fmt.Errorf("%w: only students can ask questions", apperr.ErrForbidden)
	ErrContentRequired = apperr.NewValidation("text", "at least one of text, image_url, audio_url, video_url is required")
	ErrInvalidTeacher  = apperr.NewValidation("teacher_id", "must reference an active teacher")
)
