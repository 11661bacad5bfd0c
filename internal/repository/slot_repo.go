package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mathtutor/internal/domain"
)

type SlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// GetForUpdate reads the slot under a row lock so that concurrent payment
// confirmations on the same slot are serialised. SQLite ignores the clause.
func (r *SlotRepository) GetForUpdate(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	var s domain.TimeSlot
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type SlotFilter struct {
	TeacherID int64
	Status    domain.SlotStatus
	From      *time.Time
}

func (r *SlotRepository) Create(ctx context.Context, s *domain.TimeSlot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	var s domain.TimeSlot
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SlotRepository) List(ctx context.Context, f SlotFilter) ([]domain.TimeSlot, error) {
	q := r.db.WithContext(ctx).Model(&domain.TimeSlot{})
	if f.TeacherID > 0 {
		q = q.Where("teacher_id = ?", f.TeacherID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("start_time >= ?", *f.From)
	}

	var slots []domain.TimeSlot
	err := q.Order("start_time ASC").Find(&slots).Error
	return slots, err
}

// Reserve takes one seat with a single conditional update, so concurrent
// callers can never push booked_count past max_students. The slot turns
// BOOKED when its last seat is taken.
func (r *SlotRepository) Reserve(ctx context.Context, id int64, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.TimeSlot{}).
		Where("id = ? AND status = ? AND booked_count < max_students", id, domain.SlotAvailable).
		Updates(map[string]any{
			"booked_count": gorm.Expr("booked_count + 1"),
			"status":       gorm.Expr("CASE WHEN booked_count + 1 >= max_students THEN ? ELSE status END", domain.SlotBooked),
			"updated_at":   now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoSeat
	}
	return nil
}

// Release frees one seat and reopens a BOOKED slot.
func (r *SlotRepository) Release(ctx context.Context, id int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.TimeSlot{}).
		Where("id = ? AND booked_count > 0", id).
		Updates(map[string]any{
			"booked_count": gorm.Expr("booked_count - 1"),
			"status":       gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", domain.SlotBooked, domain.SlotAvailable),
			"updated_at":   now,
		}).Error
}

func (r *SlotRepository) SetStatus(ctx context.Context, id int64, status domain.SlotStatus, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.TimeSlot{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": now}).Error
}

// StampLinks sets meeting and chat links once. It reports whether this call
// stamped them.
func (r *SlotRepository) StampLinks(ctx context.Context, id int64, meeting, chat string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.TimeSlot{}).
		Where("id = ? AND (meeting_link IS NULL OR meeting_link = '')", id).
		Updates(map[string]any{"meeting_link": meeting, "chat_link": chat, "updated_at": now})
	return res.RowsAffected > 0, res.Error
}
