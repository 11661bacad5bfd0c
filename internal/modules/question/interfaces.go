package question

import (
	"context"

	"mathtutor/internal/domain"
)

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
