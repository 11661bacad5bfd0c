package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"mathtutor/internal/domain"
)

// StatsRepository aggregates the per-teacher figures used for ranking.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type countRow struct {
	TeacherID int64
	Cnt       int64
}

type stampRow struct {
	TeacherID int64
	Stamp     *time.Time
}

func (r *StatsRepository) EndorsementCounts(ctx context.Context) (map[int64]int, error) {
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&domain.Endorsement{}).
		Select("teacher_id, COUNT(*) AS cnt").
		Group("teacher_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCounts(rows), nil
}

// CompletedQuestionsSince counts COMPLETED questions per teacher with
// completed_at at or after since.
func (r *StatsRepository) CompletedQuestionsSince(ctx context.Context, since time.Time) (map[int64]int, error) {
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("teacher_id, COUNT(*) AS cnt").
		Where("kind = ? AND status = ? AND teacher_id IS NOT NULL AND completed_at >= ?",
			domain.KindQuestion, domain.StatusCompleted, since).
		Group("teacher_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCounts(rows), nil
}

// LastAnswered returns the latest answered_at per teacher.
func (r *StatsRepository) LastAnswered(ctx context.Context) (map[int64]time.Time, error) {
	var rows []stampRow
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("teacher_id, answered_at AS stamp").
		Where("kind = ? AND teacher_id IS NOT NULL AND answered_at IS NOT NULL", domain.KindQuestion).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return latest(rows), nil
}

// LastBookingUpdate returns the latest booking updated_at per teacher.
func (r *StatsRepository) LastBookingUpdate(ctx context.Context) (map[int64]time.Time, error) {
	var rows []stampRow
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("teacher_id, updated_at AS stamp").
		Where("kind = ? AND teacher_id IS NOT NULL", domain.KindBooking).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return latest(rows), nil
}

func toCounts(rows []countRow) map[int64]int {
	out := make(map[int64]int, len(rows))
	for _, r := range rows {
		out[r.TeacherID] = int(r.Cnt)
	}
	return out
}

// latest folds timestamps in Go; SQLite returns MAX() over datetime
// columns as text, which does not scan into time.Time.
func latest(rows []stampRow) map[int64]time.Time {
	out := make(map[int64]time.Time, len(rows))
	for _, r := range rows {
		if r.Stamp == nil {
			continue
		}
		if cur, ok := out[r.TeacherID]; !ok || r.Stamp.After(cur) {
			out[r.TeacherID] = *r.Stamp
		}
	}
	return out
}
