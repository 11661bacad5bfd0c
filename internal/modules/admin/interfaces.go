package admin

import (
	"context"
	"time"

	"mathtutor/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error)
	SetBanned(ctx context.Context, id int64, banned bool, reason string, at time.Time) error
}

// Expirer runs one expiry pass over overdue questions.
type Expirer interface {
	ExpireDue(ctx context.Context) (int, error)
}
