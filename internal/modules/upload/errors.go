package upload

import (
	"fmt"

	"mathtutor/internal/pkg/apperr"
)

var (
	ErrUploadNotFound  = fmt.Errorf("%w: upload not found", apperr.ErrNotFound)
	ErrFileTooLarge    = apperr.NewValidation("file", "exceeds maximum allowed size")
	ErrInvalidMimeType = apperr.NewValidation("file", "file type is not allowed")
	ErrEmptyFile       = apperr.NewValidation("file", "file is empty")
)
