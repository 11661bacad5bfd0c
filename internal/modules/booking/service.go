package booking

import (
	"context"
	"errors"
	"strings"

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
	slots  SlotRepository
	orders *order.Service
	log    *zap.Logger
}

func NewService(db *gorm.DB, slots SlotRepository, orders *order.Service, log *zap.Logger) *Service {
	return &Service{db: db, slots: slots, orders: orders, log: logger.OrNop(log)}
}

// CreateSlot publishes a bookable interval. Individual sessions always have
// exactly one seat.
func (s *Service) CreateSlot(ctx context.Context, actor order.Actor, req CreateSlotRequest) (*domain.TimeSlot, error) {
	if actor.Role != domain.RoleTeacher {
		return nil, ErrTeachersOnly
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidPeriod
	}
	now := s.orders.Clock().Now()
	if !req.StartTime.After(now) {
		return nil, ErrStartInPast
	}

	minStudents, maxStudents := 1, 1
	if req.IsGroupSession {
		minStudents, maxStudents = req.MinStudents, req.MaxStudents
		if minStudents == 0 {
			minStudents = 1
		}
		if maxStudents < minStudents {
			return nil, ErrCapacity
		}
	}

	slot := &domain.TimeSlot{
		TeacherID:      actor.ID,
		Title:          strings.TrimSpace(req.Title),
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime.UTC(),
		MinStudents:    minStudents,
		MaxStudents:    maxStudents,
		IsGroupSession: req.IsGroupSession,
		MinPrice:       req.MinPrice,
		Status:         domain.SlotAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *Service) GetSlot(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

func (s *Service) ListSlots(ctx context.Context, q SlotQuery) ([]domain.TimeSlot, error) {
	f := repository.SlotFilter{
		TeacherID: q.TeacherID,
		Status:    domain.SlotStatus(strings.ToUpper(q.Status)),
	}
	if q.Upcoming {
		now := s.orders.Clock().Now()
		f.From = &now
	}
	return s.slots.List(ctx, f)
}

// CreateBooking reserves a seat and opens a PENDING booking awaiting
// payment. The seat is taken by a conditional update inside the same
// transaction, so the slot can never be overbooked, and a student holds at
// most one live booking per slot.
func (s *Service) CreateBooking(ctx context.Context, actor order.Actor, req CreateBookingRequest) (*domain.Order, error) {
	if actor.Role != domain.RoleStudent {
		return nil, ErrStudentsOnly
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	slot, err := s.GetSlot(ctx, req.TimeSlotID)
	if err != nil {
		return nil, err
	}
	now := s.orders.Clock().Now()
	if slot.Status != domain.SlotAvailable {
		return nil, ErrSlotUnavailable
	}
	if !slot.StartTime.After(now) {
		return nil, ErrSlotInPast
	}

	price := slot.MinPrice
	if req.Price != nil {
		price = *req.Price
	}
	if price < slot.MinPrice {
		return nil, ErrPriceTooLow
	}

	teacherID := slot.TeacherID
	slotID := slot.ID
	b := &domain.Order{
		Kind:          domain.KindBooking,
		StudentID:     actor.ID,
		TeacherID:     &teacherID,
		TimeSlotID:    &slotID,
		Price:         price,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Reserve first: its update holds the slot row lock, so a second
		// request from the same student sees this booking once it commits.
		if err := repository.NewSlotRepository(tx).Reserve(ctx, slot.ID, now); err != nil {
			if errors.Is(err, repository.ErrNoSeat) {
				return ErrSlotFull
			}
			return err
		}

		orders := repository.NewOrderRepository(tx)
		held, err := orders.HasActiveBooking(ctx, actor.ID, slot.ID)
		if err != nil {
			return err
		}
		if held {
			return ErrAlreadyBooked
		}
		if err := orders.Create(ctx, b); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrAlreadyBooked
			}
			return err
		}

		meta := map[string]any{"price": price, "time_slot_id": slot.ID}
		entry := order.NewLog(b.ID, actor, "", domain.StatusPending, domain.ActionCreate, meta, now)
		return repository.NewOrderLogRepository(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.Int64(logger.FieldOrderID, b.ID),
		zap.Int64(logger.FieldSlotID, slot.ID),
		zap.Int64(logger.FieldUserID, actor.ID),
	)
	s.orders.Publish(order.EventFor(b, domain.ActionCreate, "", domain.StatusPending, now))
	return b, nil
}

func (s *Service) ListBookings(ctx context.Context, actor order.Actor) ([]domain.Order, error) {
	return s.orders.List(ctx, domain.KindBooking, actor, false)
}
