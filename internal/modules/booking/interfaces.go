package booking

import (
	"context"

	"mathtutor/internal/domain"
	"mathtutor/internal/repository"
)

type SlotRepository interface {
	Create(ctx context.Context, s *domain.TimeSlot) error
	GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error)
	List(ctx context.Context, f repository.SlotFilter) ([]domain.TimeSlot, error)
}
