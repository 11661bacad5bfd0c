package question

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"mathtutor/internal/domain"
	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/pkg/validator"
	"mathtutor/internal/repository"
)

type Service struct {
	db     *gorm.DB
	users  userReader
	orders *order.Service
	log    *zap.Logger
}

func NewService(db *gorm.DB, users userReader, orders *order.Service, log *zap.Logger) *Service {
	return &Service{db: db, users: users, orders: orders, log: logger.OrNop(log)}
}

// Create posts a paid question. Payment is captured on creation, so the
// escrow is held from the start and the deadline runs from now.
func (s *Service) Create(ctx context.Context, actor order.Actor, req CreateQuestionRequest) (*domain.Order, error) {
	if actor.Role != domain.RoleStudent {
		return nil, ErrStudentsOnly
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Text = strings.TrimSpace(req.Text)

	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Content().IsEmpty() {
		return nil, ErrContentRequired
	}
	if req.TeacherID != nil {
		t, err := s.users.GetByID(ctx, *req.TeacherID)
		if err != nil && !repository.IsNotFound(err) {
			return nil, err
		}
		if t == nil || t.Role != domain.RoleTeacher || t.IsBanned {
			return nil, ErrInvalidTeacher
		}
	}

	now := s.orders.Clock().Now()
	deadline := now.Add(time.Duration(req.ResponseHours) * time.Hour)
	q := &domain.Order{
		Kind:          domain.KindQuestion,
		StudentID:     actor.ID,
		TeacherID:     req.TeacherID,
		Price:         req.Price,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentCompleted,
		PaymentHeld:   true,
		PaidAt:        &now,
		CreatedAt:     now,
		UpdatedAt:     now,
		Question: &domain.QuestionContent{
			Title:         req.Title,
			Subject:       req.Subject,
			ResponseHours: req.ResponseHours,
			Deadline:      deadline,
			Text:          req.Text,
			ImageURL:      req.ImageURL,
			AudioURL:      req.AudioURL,
			VideoURL:      req.VideoURL,
		},
	}

	meta := map[string]any{
		"price":          req.Price,
		"response_hours": req.ResponseHours,
		"deadline":       deadline.Format(time.RFC3339),
	}
	if req.TeacherID != nil {
		meta["teacher_id"] = *req.TeacherID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewOrderRepository(tx).Create(ctx, q); err != nil {
			return err
		}
		entry := order.NewLog(q.ID, actor, "", domain.StatusPending, domain.ActionCreate, meta, now)
		return repository.NewOrderLogRepository(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("question created",
		zap.Int64(logger.FieldOrderID, q.ID),
		zap.Int64(logger.FieldUserID, actor.ID),
		zap.Float64("price", q.Price),
	)
	s.orders.Publish(order.EventFor(q, domain.ActionCreate, "", domain.StatusPending, now))
	return q, nil
}

// List returns the caller's questions, or the open marketplace for
// teachers when open is set.
func (s *Service) List(ctx context.Context, actor order.Actor, open bool) ([]domain.Order, error) {
	return s.orders.List(ctx, domain.KindQuestion, actor, open)
}
