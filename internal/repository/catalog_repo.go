package repository

import (
	"context"

	"gorm.io/gorm"

	"mathtutor/internal/domain"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateCourse(ctx context.Context, c *domain.Course) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// ListCourses returns published courses, or every course of teacherID when
// it is set.
func (r *CatalogRepository) ListCourses(ctx context.Context, teacherID int64) ([]domain.Course, error) {
	q := r.db.WithContext(ctx).Model(&domain.Course{})
	if teacherID > 0 {
		q = q.Where("teacher_id = ?", teacherID)
	} else {
		q = q.Where("is_published = ?", true)
	}
	var out []domain.Course
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *CatalogRepository) CreateChallenge(ctx context.Context, c *domain.Challenge) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CatalogRepository) GetChallenge(ctx context.Context, id int64) (*domain.Challenge, error) {
	var c domain.Challenge
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepository) ListChallenges(ctx context.Context, difficulty domain.Difficulty) ([]domain.Challenge, error) {
	q := r.db.WithContext(ctx).Model(&domain.Challenge{})
	if difficulty != "" {
		q = q.Where("difficulty = ?", difficulty)
	}
	var out []domain.Challenge
	err := q.Order("id DESC").Find(&out).Error
	return out, err
}

func (r *CatalogRepository) CreateAttempt(ctx context.Context, a *domain.ChallengeAttempt) error {
	return r.db.WithContext(ctx).Create(a).Error
}
