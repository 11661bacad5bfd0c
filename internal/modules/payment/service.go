package payment

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mathtutor/internal/domain"
	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/repository"
)

// Service simulates a payment gateway for bookings. It has no external
// I/O: initiate hands out a continuation token, complete settles it.
type Service struct {
	db      *gorm.DB
	orders  *order.Service
	baseURL string
	log     *zap.Logger
}

func NewService(db *gorm.DB, orders *order.Service, baseURL string, log *zap.Logger) *Service {
	return &Service{
		db:      db,
		orders:  orders,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.OrNop(log),
	}
}

// Initiate starts a payment for a PENDING booking whose payment is PENDING
// or FAILED.
func (s *Service) Initiate(ctx context.Context, actor order.Actor, bookingID int64, method domain.PaymentMethod) (*InitiateResponse, error) {
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}

	var resp *InitiateResponse
	var ev order.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		b, err := s.loadBooking(ctx, orders, bookingID, actor)
		if err != nil {
			return err
		}
		if b.Status != domain.StatusPending {
			return ErrNotPayable
		}
		if b.PaymentStatus != domain.PaymentPending && b.PaymentStatus != domain.PaymentFailed {
			return ErrNotPayable
		}

		now := s.orders.Clock().Now()
		prev := b.PaymentStatus
		b.PaymentStatus = domain.PaymentProcessing
		b.PaymentMethod = method
		b.PaymentToken = uuid.NewString()
		b.UpdatedAt = now
		if err := orders.Save(ctx, b, b.Status, prev); err != nil {
			return staleAsInvalid(err)
		}

		meta := map[string]any{"method": method, "amount": b.Price}
		entry := order.NewLog(b.ID, actor, b.Status, b.Status, domain.ActionPaymentInitiated, meta, now)
		if err := repository.NewOrderLogRepository(tx).Append(ctx, entry); err != nil {
			return err
		}

		resp = &InitiateResponse{
			Token:         b.PaymentToken,
			PaymentURL:    fmt.Sprintf("%s/%d/payment/process?token=%s", s.baseURL, b.ID, b.PaymentToken),
			PaymentStatus: b.PaymentStatus,
		}
		ev = order.EventFor(b, domain.ActionPaymentInitiated, b.Status, b.Status, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment initiated",
		zap.Int64(logger.FieldOrderID, bookingID),
		zap.String("method", string(method)),
	)
	s.orders.Publish(ev)
	return resp, nil
}

// Complete settles a PROCESSING payment. On success the escrow is held and
// the auto-confirm path runs in the same transaction. On failure only the
// payment status changes. A replayed callback finds the payment no longer
// PROCESSING and is rejected.
func (s *Service) Complete(ctx context.Context, actor order.Actor, bookingID int64, token string, success bool) (*domain.Order, error) {
	var events []order.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		b, err := s.loadBooking(ctx, orders, bookingID, actor)
		if err != nil {
			return err
		}
		if b.PaymentStatus != domain.PaymentProcessing {
			return ErrNotProcessing
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(b.PaymentToken)) != 1 {
			return ErrTokenMismatch
		}
		if b.Status != domain.StatusPending {
			return ErrNotPayable
		}

		now := s.orders.Clock().Now()
		action := domain.ActionPaymentFailed
		b.PaymentToken = ""
		b.UpdatedAt = now
		if success {
			action = domain.ActionPaymentCompleted
			b.PaymentStatus = domain.PaymentCompleted
			b.PaymentHeld = true
			b.PaidAt = &now
		} else {
			b.PaymentStatus = domain.PaymentFailed
		}
		if err := orders.Save(ctx, b, b.Status, domain.PaymentProcessing); err != nil {
			return staleAsInvalid(err)
		}

		meta := map[string]any{"method": b.PaymentMethod, "amount": b.Price}
		entry := order.NewLog(b.ID, actor, b.Status, b.Status, action, meta, now)
		if err := repository.NewOrderLogRepository(tx).Append(ctx, entry); err != nil {
			return err
		}
		events = append(events, order.EventFor(b, action, b.Status, b.Status, now))

		if !success {
			return nil
		}
		confirmed, err := s.orders.ConfirmPaid(ctx, tx, b)
		if err != nil {
			return err
		}
		for _, t := range confirmed {
			events = append(events, t.Event())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment completed",
		zap.Int64(logger.FieldOrderID, bookingID),
		zap.Bool("success", success),
		zap.Int("events", len(events)),
	)
	s.orders.Publish(events...)

	b, err := repository.NewOrderRepository(s.db).GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) loadBooking(ctx context.Context, orders *repository.OrderRepository, id int64, actor order.Actor) (*domain.Order, error) {
	b, err := orders.GetForUpdate(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	if b.Kind != domain.KindBooking {
		return nil, order.ErrOrderNotFound
	}
	if !actor.IsSystem() && b.StudentID != actor.ID {
		return nil, ErrNotOrderPayer
	}
	return b, nil
}

func staleAsInvalid(err error) error {
	if errors.Is(err, repository.ErrStale) {
		return order.ErrInvalidTransition
	}
	return err
}
