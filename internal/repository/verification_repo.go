package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"mathtutor/internal/domain"
)

type VerificationCodeRepository struct {
	db *gorm.DB
}

func NewVerificationCodeRepository(db *gorm.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: db}
}

func (r *VerificationCodeRepository) Create(ctx context.Context, c *domain.VerificationCode) error {
	c.Email = normalizeEmail(c.Email)
	return r.db.WithContext(ctx).Create(c).Error
}

// GetLatestActive returns the newest unused code for email.
func (r *VerificationCodeRepository) GetLatestActive(ctx context.Context, email string) (*domain.VerificationCode, error) {
	var c domain.VerificationCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND used_at IS NULL", normalizeEmail(email)).
		Order("id DESC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *VerificationCodeRepository) IncrementAttempts(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&domain.VerificationCode{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

// MarkUsed consumes the code. It returns ErrStale when the code was
// already consumed.
func (r *VerificationCodeRepository) MarkUsed(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.VerificationCode{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// DeleteStale removes codes that expired or were consumed before cutoff.
func (r *VerificationCodeRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR (used_at IS NOT NULL AND used_at < ?)", cutoff, cutoff).
		Delete(&domain.VerificationCode{})
	return res.RowsAffected, res.Error
}
