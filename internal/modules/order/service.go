package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mathtutor/internal/domain"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/pkg/utils"
	"mathtutor/internal/repository"
)

// Command asks the service to run one transition.
type Command struct {
	OrderID int64
	// Kind, when set, must match the order; a mismatch reads as not found.
	Kind    domain.OrderKind
	Action  domain.Action
	Actor   Actor
	Payload Payload
}

type Service struct {
	db     *gorm.DB
	clock  clock.Clock
	log    *zap.Logger
	events EventPublisher
}

func NewService(db *gorm.DB, clk clock.Clock, log *zap.Logger, events EventPublisher) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{db: db, clock: clk, log: logger.OrNop(log), events: events}
}

func (s *Service) Clock() clock.Clock { return s.clock }

// Publish forwards committed events.
func (s *Service) Publish(events ...Event) {
	for _, ev := range events {
		s.events.PublishOrderEvent(ev)
	}
}

// Apply runs one transition in its own transaction and publishes the
// resulting event after commit. A rejected transition changes nothing.
func (s *Service) Apply(ctx context.Context, cmd Command) (*domain.Order, error) {
	var t *Transition
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		t, err = s.ApplyTx(ctx, tx, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order transition",
		zap.Int64(logger.FieldOrderID, t.Order.ID),
		zap.String(logger.FieldOperation, string(t.Action)),
		zap.String("from", string(t.From)),
		zap.String("to", string(t.To)),
		zap.Int64(logger.FieldUserID, t.Actor.ID),
	)
	s.Publish(t.Event())
	return t.Order, nil
}

// ApplyTx runs one transition inside tx: lock and read the order, plan,
// compare-and-swap the row, apply slot effects, append the log.
func (s *Service) ApplyTx(ctx context.Context, tx *gorm.DB, cmd Command) (*Transition, error) {
	orders := repository.NewOrderRepository(tx)

	o, err := orders.GetForUpdate(ctx, cmd.OrderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if cmd.Kind != "" && o.Kind != cmd.Kind {
		return nil, ErrOrderNotFound
	}

	t, err := Plan(o, cmd.Action, cmd.Actor, cmd.Payload, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := orders.Save(ctx, t.Order, t.From, o.PaymentStatus); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	if t.Answer != nil {
		if err := orders.SaveAnswer(ctx, o.ID, *t.Answer); err != nil {
			return nil, err
		}
	}

	if err := s.applySlotEffect(ctx, tx, t); err != nil {
		return nil, err
	}

	entry := NewLog(o.ID, t.Actor, t.From, t.To, t.Action, t.Metadata, t.At)
	if err := repository.NewOrderLogRepository(tx).Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append order log: %w", err)
	}
	return t, nil
}

func (s *Service) applySlotEffect(ctx context.Context, tx *gorm.DB, t *Transition) error {
	if t.Slot == SlotUnchanged || t.Order.TimeSlotID == nil {
		return nil
	}
	slots := repository.NewSlotRepository(tx)
	slotID := *t.Order.TimeSlotID
	switch t.Slot {
	case SlotReleaseSeat:
		return slots.Release(ctx, slotID, t.At)
	case SlotMarkCompleted:
		return slots.SetStatus(ctx, slotID, domain.SlotCompleted, t.At)
	}
	return nil
}

// ConfirmPaid is the auto-accept path run after a booking payment succeeds,
// inside the payment transaction. An individual slot confirms the booking
// at once. A group slot confirms every paid booking once the paid count
// reaches min_students. Slot links are stamped on the first confirmation.
func (s *Service) ConfirmPaid(ctx context.Context, tx *gorm.DB, booking *domain.Order) ([]*Transition, error) {
	if booking.TimeSlotID == nil {
		return nil, nil
	}
	slots := repository.NewSlotRepository(tx)
	orders := repository.NewOrderRepository(tx)

	slot, err := slots.GetForUpdate(ctx, *booking.TimeSlotID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	var ids []int64
	if !slot.IsGroupSession {
		ids = []int64{booking.ID}
	} else {
		paid, err := orders.CountPaid(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		if paid < int64(slot.MinStudents) {
			return nil, nil
		}
		pending, err := orders.ListPaidPending(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range pending {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	now := s.clock.Now()
	meeting, chat := meetingLinks(slot.ID)
	stamped, err := slots.StampLinks(ctx, slot.ID, meeting, chat, now)
	if err != nil {
		return nil, err
	}

	out := make([]*Transition, 0, len(ids))
	for _, id := range ids {
		t, err := s.ApplyTx(ctx, tx, Command{
			OrderID: id,
			Kind:    domain.KindBooking,
			Action:  domain.ActionConfirm,
			Actor:   SystemActor(),
		})
		if err != nil {
			return nil, fmt.Errorf("confirm booking %d: %w", id, err)
		}
		out = append(out, t)
	}

	if stamped {
		s.log.Info("slot activated",
			zap.Int64(logger.FieldSlotID, slot.ID),
			zap.Int("confirmed", len(out)),
		)
	}
	return out, nil
}

func meetingLinks(slotID int64) (meeting, chat string) {
	token := uuid.NewString()
	return fmt.Sprintf("https://meet.mathtutor.app/%d-%s", slotID, token),
		fmt.Sprintf("https://chat.mathtutor.app/%d-%s", slotID, token)
}

// NewLog builds an order log row. The system actor is stored without id.
func NewLog(orderID int64, actor Actor, from, to domain.OrderStatus, action domain.Action, meta map[string]any, at time.Time) *domain.OrderLog {
	var actorID *int64
	if !actor.IsSystem() {
		id := actor.ID
		actorID = &id
	}
	return &domain.OrderLog{
		OrderID:    orderID,
		ActorID:    actorID,
		ActorRole:  actor.LogRole(),
		FromStatus: from,
		ToStatus:   to,
		Action:     action,
		Metadata:   utils.MetadataToString(meta),
		CreatedAt:  at,
	}
}

func (t *Transition) Event() Event {
	return EventFor(t.Order, t.Action, t.From, t.To, t.At)
}

// Get returns an order of the given kind visible to actor.
func (s *Service) Get(ctx context.Context, kind domain.OrderKind, id int64, actor Actor) (*domain.Order, error) {
	o, err := repository.NewOrderRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if kind != "" && o.Kind != kind {
		return nil, ErrOrderNotFound
	}
	if !CanView(actor, o) {
		return nil, ErrForbidden
	}
	return o, nil
}

// Logs returns the audit trail of an order in append order.
func (s *Service) Logs(ctx context.Context, kind domain.OrderKind, id int64, actor Actor) ([]domain.OrderLog, error) {
	if _, err := s.Get(ctx, kind, id, actor); err != nil {
		return nil, err
	}
	return repository.NewOrderLogRepository(s.db).ListByOrder(ctx, id)
}

// List returns the orders of kind visible to actor. Teachers asking for
// open orders get the unassigned PENDING questions.
func (s *Service) List(ctx context.Context, kind domain.OrderKind, actor Actor, open bool) ([]domain.Order, error) {
	f := repository.OrderFilter{Kind: kind}
	switch actor.Role {
	case domain.RoleStudent:
		f.StudentID = actor.ID
	case domain.RoleTeacher:
		if open && kind == domain.KindQuestion {
			f.OpenOnly = true
		} else {
			f.TeacherID = actor.ID
		}
	case domain.RoleAdmin:
	default:
		return nil, ErrForbidden
	}
	return repository.NewOrderRepository(s.db).List(ctx, f)
}
