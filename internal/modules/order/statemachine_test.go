package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathtutor/internal/domain"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func int64p(v int64) *int64 { return &v }

func newQuestion(teacherID *int64) *domain.Order {
	paid := t0
	return &domain.Order{
		ID:            1,
		Kind:          domain.KindQuestion,
		StudentID:     10,
		TeacherID:     teacherID,
		Price:         10,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentCompleted,
		PaymentHeld:   true,
		PaidAt:        &paid,
		Question: &domain.QuestionContent{
			ResponseHours: 24,
			Deadline:      t0.Add(24 * time.Hour),
			Text:          "integrate x^2",
		},
	}
}

func newBooking(status domain.OrderStatus, held bool) *domain.Order {
	o := &domain.Order{
		ID:            2,
		Kind:          domain.KindBooking,
		StudentID:     10,
		TeacherID:     int64p(20),
		TimeSlotID:    int64p(5),
		Price:         40,
		Status:        status,
		PaymentStatus: domain.PaymentPending,
	}
	if held {
		o.PaymentStatus = domain.PaymentCompleted
		o.PaymentHeld = true
	}
	return o
}

var (
	student = Actor{ID: 10, Role: domain.RoleStudent}
	teacher = Actor{ID: 20, Role: domain.RoleTeacher}
	other   = Actor{ID: 21, Role: domain.RoleTeacher}
	admin   = Actor{ID: 1, Role: domain.RoleAdmin}
)

func TestFee(t *testing.T) {
	cases := []struct {
		price, fee, payout float64
	}{
		{10, 1.5, 8.5},
		{5, 0.75, 4.25},
		{33.33, 5, 28.33},
		{19.99, 3, 16.99},
	}
	for _, tc := range cases {
		fee, payout := Fee(tc.price)
		assert.InDelta(t, tc.fee, fee, 1e-9, "fee for %v", tc.price)
		assert.InDelta(t, tc.payout, payout, 1e-9, "payout for %v", tc.price)
	}
}

func TestPlan_QuestionHappyPath(t *testing.T) {
	q := newQuestion(int64p(20))

	tr, err := Plan(q, domain.ActionAccept, teacher, Payload{}, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, tr.Order.Status)
	assert.NotNil(t, tr.Order.AcceptedAt)
	assert.Equal(t, domain.StatusPending, q.Status, "input must not be mutated")

	tr, err = Plan(tr.Order, domain.ActionAnswer, teacher, Payload{Answer: domain.Content{Text: "x^3/3 + C"}}, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAnswered, tr.Order.Status)
	require.NotNil(t, tr.Answer)
	assert.Equal(t, "x^3/3 + C", tr.Order.Question.AnswerText)
	assert.Empty(t, q.Question.AnswerText)

	tr, err = Plan(tr.Order, domain.ActionComplete, student, Payload{}, t0.Add(3*time.Hour))
	require.NoError(t, err)
	done := tr.Order
	assert.Equal(t, domain.StatusCompleted, done.Status)
	require.NotNil(t, done.PlatformFee)
	assert.InDelta(t, 1.5, *done.PlatformFee, 1e-9)
	assert.InDelta(t, 8.5, *done.TeacherPayout, 1e-9)
	assert.False(t, done.PaymentHeld)
	assert.True(t, done.PaymentReleased)
	assert.Equal(t, 1.5, tr.Metadata["platform_fee"])
}

func TestPlan_AcceptOpenAndPreassigned(t *testing.T) {
	open := newQuestion(nil)
	tr, err := Plan(open, domain.ActionAccept, other, Payload{}, t0)
	require.NoError(t, err)
	require.NotNil(t, tr.Order.TeacherID)
	assert.Equal(t, other.ID, *tr.Order.TeacherID)
	assert.Nil(t, open.TeacherID)

	assigned := newQuestion(int64p(teacher.ID))
	_, err = Plan(assigned, domain.ActionAccept, other, Payload{}, t0)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = Plan(assigned, domain.ActionAccept, student, Payload{}, t0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPlan_RejectionsLeaveOrderUntouched(t *testing.T) {
	q := newQuestion(int64p(teacher.ID))
	accepted, err := Plan(q, domain.ActionAccept, teacher, Payload{}, t0)
	require.NoError(t, err)

	// re-applying is a precondition failure, not a silent success
	_, err = Plan(accepted.Order, domain.ActionAccept, teacher, Payload{}, t0)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, domain.StatusAccepted, accepted.Order.Status)

	_, err = Plan(accepted.Order, domain.ActionAnswer, teacher, Payload{}, t0)
	assert.ErrorIs(t, err, ErrAnswerRequired)

	_, err = Plan(accepted.Order, domain.ActionCancel, student, Payload{}, t0)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Plan(q, domain.ActionNoShow, teacher, Payload{}, t0)
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = Plan(q, domain.ActionAccept, teacher, Payload{}, t0.Add(25*time.Hour))
	assert.ErrorIs(t, err, ErrDeadlinePassed)
}

func TestPlan_Expire(t *testing.T) {
	q := newQuestion(nil)

	_, err := Plan(q, domain.ActionExpire, SystemActor(), Payload{}, t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrDeadlineNotReached)

	tr, err := Plan(q, domain.ActionExpire, SystemActor(), Payload{}, t0.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, tr.Order.Status)
	assert.False(t, tr.Order.PaymentHeld)
	assert.Equal(t, domain.PaymentRefunded, tr.Order.PaymentStatus)
	assert.NotNil(t, tr.Order.ExpiredAt)
	assert.NotNil(t, tr.Order.RefundedAt)

	answered := newQuestion(int64p(teacher.ID))
	answered.Status = domain.StatusAnswered
	_, err = Plan(answered, domain.ActionExpire, SystemActor(), Payload{}, t0.Add(48*time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPlan_CancelAndRefundQuestion(t *testing.T) {
	q := newQuestion(nil)
	tr, err := Plan(q, domain.ActionCancel, student, Payload{Reason: "solved it myself"}, t0)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, tr.Order.Status)
	assert.Equal(t, "solved it myself", tr.Order.CancelReason)
	assert.Equal(t, "solved it myself", tr.Metadata["reason"])
	assert.Equal(t, domain.PaymentRefunded, tr.Order.PaymentStatus)

	answered := newQuestion(int64p(teacher.ID))
	answered.Status = domain.StatusAnswered
	_, err = Plan(answered, domain.ActionRefund, student, Payload{}, t0)
	assert.ErrorIs(t, err, ErrForbidden)

	tr, err = Plan(answered, domain.ActionRefund, admin, Payload{}, t0)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, tr.Order.Status)
	assert.False(t, tr.Order.PaymentHeld)
}

func TestPlan_BookingTransitions(t *testing.T) {
	t.Run("confirm requires system actor and payment", func(t *testing.T) {
		_, err := Plan(newBooking(domain.StatusPending, true), domain.ActionConfirm, teacher, Payload{}, t0)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = Plan(newBooking(domain.StatusPending, false), domain.ActionConfirm, SystemActor(), Payload{}, t0)
		assert.ErrorIs(t, err, ErrNotPaid)

		tr, err := Plan(newBooking(domain.StatusPending, true), domain.ActionConfirm, SystemActor(), Payload{}, t0)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, tr.Order.Status)
	})

	t.Run("cancel by teacher refunds and frees the seat", func(t *testing.T) {
		tr, err := Plan(newBooking(domain.StatusConfirmed, true), domain.ActionCancelByTeacher, teacher, Payload{}, t0)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelledByTeacher, tr.Order.Status)
		assert.False(t, tr.Order.PaymentHeld)
		assert.NotNil(t, tr.Order.RefundedAt)
		assert.Equal(t, SlotReleaseSeat, tr.Slot)
	})

	t.Run("cancel of unpaid booking has nothing to refund", func(t *testing.T) {
		tr, err := Plan(newBooking(domain.StatusPending, false), domain.ActionCancelByStudent, student, Payload{}, t0)
		require.NoError(t, err)
		assert.Nil(t, tr.Order.RefundedAt)
		assert.Equal(t, domain.PaymentPending, tr.Order.PaymentStatus)
		assert.Equal(t, false, tr.Metadata["refunded"])
	})

	t.Run("complete by either party charges the fee", func(t *testing.T) {
		for _, a := range []Actor{student, teacher} {
			tr, err := Plan(newBooking(domain.StatusConfirmed, true), domain.ActionComplete, a, Payload{}, t0)
			require.NoError(t, err)
			assert.InDelta(t, 6, *tr.Order.PlatformFee, 1e-9)
			assert.InDelta(t, 34, *tr.Order.TeacherPayout, 1e-9)
			assert.Equal(t, SlotMarkCompleted, tr.Slot)
		}
	})

	t.Run("no show", func(t *testing.T) {
		_, err := Plan(newBooking(domain.StatusConfirmed, true), domain.ActionNoShow, student, Payload{}, t0)
		assert.ErrorIs(t, err, ErrForbidden)

		tr, err := Plan(newBooking(domain.StatusConfirmed, true), domain.ActionNoShow, teacher, Payload{}, t0)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNoShow, tr.Order.Status)
		assert.NotNil(t, tr.Order.NoShowAt)
		assert.NotNil(t, tr.Order.PlatformFee)
	})

	t.Run("terminal states reject everything", func(t *testing.T) {
		for _, a := range []domain.Action{domain.ActionComplete, domain.ActionCancelByStudent, domain.ActionNoShow} {
			_, err := Plan(newBooking(domain.StatusCancelledByTeacher, false), a, student, Payload{}, t0)
			assert.Error(t, err)
		}
		_, err := Plan(newBooking(domain.StatusCompleted, false), domain.ActionRefund, admin, Payload{}, t0)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestAllowed(t *testing.T) {
	assert.ElementsMatch(t, []domain.Action{
		domain.ActionAccept, domain.ActionAnswer, domain.ActionComplete,
		domain.ActionCancel, domain.ActionExpire, domain.ActionRefund,
	}, Allowed(domain.KindQuestion))
	assert.Contains(t, Allowed(domain.KindBooking), domain.ActionNoShow)
}
