package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mathtutor/internal/domain"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order together with its question payload.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Question").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetForUpdate reads the order under a row lock. SQLite ignores the
// locking clause; writes there are serialised by the database itself.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, id).Error
	if err != nil {
		return nil, err
	}
	if o.Kind == domain.KindQuestion {
		var q domain.QuestionContent
		if err := r.db.WithContext(ctx).Where("order_id = ?", o.ID).First(&q).Error; err != nil {
			return nil, err
		}
		o.Question = &q
	}
	return &o, nil
}

// Save writes the mutable columns of o, but only while the row still holds
// the given status and payment status. ErrStale is returned otherwise.
func (r *OrderRepository) Save(ctx context.Context, o *domain.Order, status domain.OrderStatus, payment domain.PaymentStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ? AND payment_status = ?", o.ID, status, payment).
		Updates(orderColumns(o))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func orderColumns(o *domain.Order) map[string]any {
	return map[string]any{
		"teacher_id":       o.TeacherID,
		"status":           o.Status,
		"payment_status":   o.PaymentStatus,
		"payment_method":   o.PaymentMethod,
		"payment_token":    o.PaymentToken,
		"payment_held":     o.PaymentHeld,
		"payment_released": o.PaymentReleased,
		"platform_fee":     o.PlatformFee,
		"teacher_payout":   o.TeacherPayout,
		"cancel_reason":    o.CancelReason,
		"paid_at":          o.PaidAt,
		"accepted_at":      o.AcceptedAt,
		"answered_at":      o.AnsweredAt,
		"completed_at":     o.CompletedAt,
		"cancelled_at":     o.CancelledAt,
		"expired_at":       o.ExpiredAt,
		"refunded_at":      o.RefundedAt,
		"no_show_at":       o.NoShowAt,
		"updated_at":       o.UpdatedAt,
	}
}

func (r *OrderRepository) SaveAnswer(ctx context.Context, orderID int64, a domain.Content) error {
	return r.db.WithContext(ctx).Model(&domain.QuestionContent{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"answer_text":      a.Text,
			"answer_image_url": a.ImageURL,
			"answer_audio_url": a.AudioURL,
			"answer_video_url": a.VideoURL,
		}).Error
}

type OrderFilter struct {
	Kind      domain.OrderKind
	StudentID int64
	TeacherID int64
	Status    domain.OrderStatus
	// OpenOnly limits the result to unassigned PENDING questions.
	OpenOnly bool
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{}).Preload("Question")
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.StudentID > 0 {
		q = q.Where("student_id = ?", f.StudentID)
	}
	if f.TeacherID > 0 {
		q = q.Where("teacher_id = ?", f.TeacherID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OpenOnly {
		q = q.Where("teacher_id IS NULL AND status = ?", domain.StatusPending)
	}

	var orders []domain.Order
	err := q.Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}

// ListOverdueQuestions returns question orders in one of the statuses
// whose deadline is at or before now, with their payload.
func (r *OrderRepository) ListOverdueQuestions(ctx context.Context, now time.Time, statuses ...domain.OrderStatus) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).Preload("Question").
		Joins("JOIN question_contents ON question_contents.order_id = orders.id").
		Where("orders.kind = ? AND orders.status IN ? AND question_contents.deadline <= ?",
			domain.KindQuestion, statuses, now).
		Order("orders.id").
		Find(&orders).Error
	return orders, err
}

// ListPaidPending returns paid bookings on the slot that still wait for
// confirmation.
func (r *OrderRepository) ListPaidPending(ctx context.Context, slotID int64) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Where("kind = ? AND time_slot_id = ? AND status = ? AND payment_status = ?",
			domain.KindBooking, slotID, domain.StatusPending, domain.PaymentCompleted).
		Order("id").
		Find(&orders).Error
	return orders, err
}

// CountPaid counts live bookings on the slot whose payment went through.
func (r *OrderRepository) CountPaid(ctx context.Context, slotID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("kind = ? AND time_slot_id = ? AND status IN ? AND payment_status = ?",
			domain.KindBooking, slotID,
			[]domain.OrderStatus{domain.StatusPending, domain.StatusConfirmed},
			domain.PaymentCompleted).
		Count(&cnt).Error
	return cnt, err
}

func (r *OrderRepository) HasActiveBooking(ctx context.Context, studentID, slotID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("kind = ? AND student_id = ? AND time_slot_id = ? AND status IN ?",
			domain.KindBooking, studentID, slotID,
			[]domain.OrderStatus{domain.StatusPending, domain.StatusConfirmed}).
		Count(&cnt).Error
	return cnt > 0, err
}

// HasCompleted reports whether the pair has at least one COMPLETED order.
func (r *OrderRepository) HasCompleted(ctx context.Context, studentID, teacherID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("student_id = ? AND teacher_id = ? AND status = ?", studentID, teacherID, domain.StatusCompleted).
		Count(&cnt).Error
	return cnt > 0, err
}
