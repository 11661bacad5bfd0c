package repository

import (
	"context"

	"gorm.io/gorm"

	"mathtutor/internal/domain"
)

// OrderLogRepository only appends and reads; log rows are never changed.
type OrderLogRepository struct {
	db *gorm.DB
}

func NewOrderLogRepository(db *gorm.DB) *OrderLogRepository {
	return &OrderLogRepository{db: db}
}

func (r *OrderLogRepository) Append(ctx context.Context, l *domain.OrderLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *OrderLogRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderLog, error) {
	var logs []domain.OrderLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&logs).Error
	return logs, err
}
