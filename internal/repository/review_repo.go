package repository

import (
	"context"

	"gorm.io/gorm"

	"mathtutor/internal/domain"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateEndorsement relies on the (student_id, teacher_id) unique index;
// a second insert for the pair fails with a unique violation.
func (r *ReviewRepository) CreateEndorsement(ctx context.Context, e *domain.Endorsement) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ReviewRepository) ListEndorsements(ctx context.Context, teacherID int64) ([]domain.Endorsement, error) {
	var out []domain.Endorsement
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *ReviewRepository) CountEndorsements(ctx context.Context, teacherID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.Endorsement{}).
		Where("teacher_id = ?", teacherID).
		Count(&cnt).Error
	return cnt, err
}

func (r *ReviewRepository) CreateRating(ctx context.Context, rt *domain.Rating) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *ReviewRepository) ListRatings(ctx context.Context, teacherID int64) ([]domain.Rating, error) {
	var out []domain.Rating
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
