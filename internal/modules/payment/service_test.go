package payment

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mathtutor/internal/domain"
	"mathtutor/internal/modules/booking"
	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/apperr"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/testdb"
	"mathtutor/internal/repository"
)

type recorder struct {
	events []order.Event
}

func (r *recorder) PublishOrderEvent(e order.Event) { r.events = append(r.events, e) }

type fixture struct {
	db       *gorm.DB
	svc      *Service
	orders   *order.Service
	bookings *booking.Service
	slots    *repository.SlotRepository
	events   *recorder
	clk      *clock.Fake
	teacher  order.Actor
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	clk := clock.NewFake(time.Time{})
	rec := &recorder{}
	orders := order.NewService(db, clk, zap.NewNop(), rec)
	slots := repository.NewSlotRepository(db)
	tu := testdb.User(t, db, domain.RoleTeacher)
	return &fixture{
		db:       db,
		svc:      NewService(db, orders, "/api/v1/bookings/", zap.NewNop()),
		orders:   orders,
		bookings: booking.NewService(db, slots, orders, zap.NewNop()),
		slots:    slots,
		events:   rec,
		clk:      clk,
		teacher:  order.Actor{ID: tu.ID, Role: tu.Role},
	}
}

func (f *fixture) slot(t *testing.T, group bool, min, max int) *domain.TimeSlot {
	t.Helper()
	start := f.clk.Now().Add(24 * time.Hour)
	s, err := f.bookings.CreateSlot(context.Background(), f.teacher, booking.CreateSlotRequest{
		StartTime:      start,
		EndTime:        start.Add(time.Hour),
		IsGroupSession: group,
		MinStudents:    min,
		MaxStudents:    max,
		MinPrice:       30,
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) book(t *testing.T, slotID int64) (order.Actor, *domain.Order) {
	t.Helper()
	u := testdb.User(t, f.db, domain.RoleStudent)
	a := order.Actor{ID: u.ID, Role: u.Role}
	b, err := f.bookings.CreateBooking(context.Background(), a, booking.CreateBookingRequest{TimeSlotID: slotID})
	require.NoError(t, err)
	return a, b
}

func (f *fixture) pay(t *testing.T, a order.Actor, bookingID int64, success bool) *domain.Order {
	t.Helper()
	ctx := context.Background()
	init, err := f.svc.Initiate(ctx, a, bookingID, domain.MethodCreditCard)
	require.NoError(t, err)
	b, err := f.svc.Complete(ctx, a, bookingID, init.Token, success)
	require.NoError(t, err)
	return b
}

func TestInitiate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	slot := f.slot(t, false, 1, 1)
	s, b := f.book(t, slot.ID)

	_, err := f.svc.Initiate(ctx, s, b.ID, domain.PaymentMethod("CASH"))
	assert.ErrorIs(t, err, ErrInvalidMethod)

	stranger := order.Actor{ID: testdb.User(t, f.db, domain.RoleStudent).ID, Role: domain.RoleStudent}
	_, err = f.svc.Initiate(ctx, stranger, b.ID, domain.MethodEWallet)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	resp, err := f.svc.Initiate(ctx, s, b.ID, domain.MethodEWallet)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentProcessing, resp.PaymentStatus)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "/api/v1/bookings/"+strconv.FormatInt(b.ID, 10)+"/payment/process?token="+resp.Token, resp.PaymentURL)

	_, err = f.svc.Initiate(ctx, s, b.ID, domain.MethodEWallet)
	assert.ErrorIs(t, err, ErrNotPayable)
}

func TestComplete_IndividualConfirmsImmediately(t *testing.T) {
	f := setup(t)
	slot := f.slot(t, false, 1, 1)
	s, b := f.book(t, slot.ID)

	paid := f.pay(t, s, b.ID, true)
	assert.Equal(t, domain.StatusConfirmed, paid.Status)
	assert.Equal(t, domain.PaymentCompleted, paid.PaymentStatus)
	assert.True(t, paid.PaymentHeld)
	assert.NotNil(t, paid.PaidAt)
	assert.Empty(t, paid.PaymentToken)

	got, err := f.slots.GetByID(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.MeetingLink)
	assert.NotEmpty(t, got.ChatLink)

	logs, err := repository.NewOrderLogRepository(f.db).ListByOrder(context.Background(), b.ID)
	require.NoError(t, err)
	actions := make([]domain.Action, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Equal(t, []domain.Action{
		domain.ActionCreate,
		domain.ActionPaymentInitiated,
		domain.ActionPaymentCompleted,
		domain.ActionConfirm,
	}, actions)
	assert.Nil(t, logs[3].ActorID)
	assert.Equal(t, "SYSTEM", logs[3].ActorRole)
}

func TestComplete_FailureAllowsRetry(t *testing.T) {
	f := setup(t)
	slot := f.slot(t, false, 1, 1)
	s, b := f.book(t, slot.ID)

	failed := f.pay(t, s, b.ID, false)
	assert.Equal(t, domain.StatusPending, failed.Status)
	assert.Equal(t, domain.PaymentFailed, failed.PaymentStatus)
	assert.False(t, failed.PaymentHeld)

	retried := f.pay(t, s, b.ID, true)
	assert.Equal(t, domain.StatusConfirmed, retried.Status)
}

func TestComplete_RejectsMismatchAndReplay(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	slot := f.slot(t, false, 1, 1)
	s, b := f.book(t, slot.ID)

	init, err := f.svc.Initiate(ctx, s, b.ID, domain.MethodBankTransfer)
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, s, b.ID, "forged", true)
	assert.ErrorIs(t, err, ErrTokenMismatch)

	_, err = f.svc.Complete(ctx, s, b.ID, init.Token, true)
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, s, b.ID, init.Token, true)
	assert.ErrorIs(t, err, ErrNotProcessing)
}

func TestPaymentOnQuestionIsNotFound(t *testing.T) {
	f := setup(t)
	u := testdb.User(t, f.db, domain.RoleStudent)
	now := f.clk.Now()
	q := &domain.Order{
		Kind:          domain.KindQuestion,
		StudentID:     u.ID,
		Price:         10,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentCompleted,
		PaymentHeld:   true,
		PaidAt:        &now,
		Question:      &domain.QuestionContent{ResponseHours: 6, Deadline: now.Add(6 * time.Hour), Text: "?"},
	}
	require.NoError(t, repository.NewOrderRepository(f.db).Create(context.Background(), q))

	_, err := f.svc.Initiate(context.Background(), order.Actor{ID: u.ID, Role: u.Role}, q.ID, domain.MethodCreditCard)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// Scenario: group slot with min 3 and max 5. Two paid bookings wait; the
// third payment confirms all three and activates the slot.
func TestScenario_GroupSessionActivation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	slot := f.slot(t, true, 3, 5)

	s1, b1 := f.book(t, slot.ID)
	s2, b2 := f.book(t, slot.ID)
	s3, b3 := f.book(t, slot.ID)

	assert.Equal(t, domain.StatusPending, f.pay(t, s1, b1.ID, true).Status)
	assert.Equal(t, domain.StatusPending, f.pay(t, s2, b2.ID, true).Status)

	got, err := f.slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Empty(t, got.MeetingLink)

	f.events.events = nil
	assert.Equal(t, domain.StatusConfirmed, f.pay(t, s3, b3.ID, true).Status)

	for _, id := range []int64{b1.ID, b2.ID} {
		o, err := f.orders.Get(ctx, domain.KindBooking, id, order.SystemActor())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, o.Status)
	}

	got, err = f.slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.MeetingLink)
	assert.Equal(t, 3, got.BookedCount)
	assert.Equal(t, domain.SlotAvailable, got.Status)

	confirms := 0
	for _, e := range f.events.events {
		if e.Action == domain.ActionConfirm {
			confirms++
		}
	}
	assert.Equal(t, 3, confirms)
}

// Scenario: a teacher cancels a confirmed individual booking. The student
// is refunded and the slot reopens.
func TestScenario_TeacherCancelsConfirmedBooking(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	slot := f.slot(t, false, 1, 1)
	s, b := f.book(t, slot.ID)
	f.pay(t, s, b.ID, true)

	got, err := f.slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotBooked, got.Status)

	cancelled, err := f.orders.Apply(ctx, order.Command{
		OrderID: b.ID,
		Kind:    domain.KindBooking,
		Action:  domain.ActionCancelByTeacher,
		Actor:   f.teacher,
		Payload: order.Payload{Reason: "ill"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelledByTeacher, cancelled.Status)
	assert.Equal(t, domain.PaymentRefunded, cancelled.PaymentStatus)
	assert.False(t, cancelled.PaymentHeld)
	assert.NotNil(t, cancelled.RefundedAt)
	assert.Equal(t, "ill", cancelled.CancelReason)

	got, err = f.slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotAvailable, got.Status)
	assert.Equal(t, 0, got.BookedCount)

	_, err = f.svc.Initiate(ctx, s, b.ID, domain.MethodCreditCard)
	assert.ErrorIs(t, err, ErrNotPayable)
}
