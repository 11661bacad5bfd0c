package order

import (
	"math"
	"slices"
	"time"

	"mathtutor/internal/domain"
)

// PlatformFeeRate is the commission kept by the platform on release.
const PlatformFeeRate = 0.15

// Payload carries optional transition input.
type Payload struct {
	Reason string
	Answer domain.Content
}

// SlotEffect is the change a booking transition makes to its time slot.
type SlotEffect int

const (
	SlotUnchanged SlotEffect = iota
	SlotReleaseSeat
	SlotMarkCompleted
)

// Transition is the outcome of Plan: the updated order plus everything the
// service has to persist alongside it.
type Transition struct {
	Order    *domain.Order
	Action   domain.Action
	Actor    Actor
	From     domain.OrderStatus
	To       domain.OrderStatus
	Metadata map[string]any
	Slot     SlotEffect
	// Answer is set when the question payload must be written too.
	Answer *domain.Content
	At     time.Time
}

type rule struct {
	from  []domain.OrderStatus
	to    domain.OrderStatus
	apply func(o *domain.Order, actor Actor, p Payload, t *Transition) error
}

var questionRules = map[domain.Action]rule{
	domain.ActionAccept: {
		from:  []domain.OrderStatus{domain.StatusPending},
		to:    domain.StatusAccepted,
		apply: acceptQuestion,
	},
	domain.ActionAnswer: {
		from:  []domain.OrderStatus{domain.StatusAccepted},
		to:    domain.StatusAnswered,
		apply: answerQuestion,
	},
	domain.ActionComplete: {
		from:  []domain.OrderStatus{domain.StatusAnswered},
		to:    domain.StatusCompleted,
		apply: complete,
	},
	domain.ActionCancel: {
		from:  []domain.OrderStatus{domain.StatusPending},
		to:    domain.StatusCancelled,
		apply: cancel,
	},
	domain.ActionExpire: {
		from:  []domain.OrderStatus{domain.StatusPending, domain.StatusAccepted},
		to:    domain.StatusExpired,
		apply: expireQuestion,
	},
	domain.ActionRefund: {
		from:  []domain.OrderStatus{domain.StatusPending, domain.StatusAccepted, domain.StatusAnswered},
		to:    domain.StatusRefunded,
		apply: refundByAdmin,
	},
}

var bookingRules = map[domain.Action]rule{
	domain.ActionConfirm: {
		from:  []domain.OrderStatus{domain.StatusPending},
		to:    domain.StatusConfirmed,
		apply: confirmBooking,
	},
	domain.ActionComplete: {
		from:  []domain.OrderStatus{domain.StatusConfirmed},
		to:    domain.StatusCompleted,
		apply: completeBooking,
	},
	domain.ActionCancelByStudent: {
		from:  []domain.OrderStatus{domain.StatusPending, domain.StatusConfirmed},
		to:    domain.StatusCancelledByStudent,
		apply: cancelBooking,
	},
	domain.ActionCancelByTeacher: {
		from:  []domain.OrderStatus{domain.StatusPending, domain.StatusConfirmed},
		to:    domain.StatusCancelledByTeacher,
		apply: cancelBooking,
	},
	domain.ActionNoShow: {
		from:  []domain.OrderStatus{domain.StatusConfirmed},
		to:    domain.StatusNoShow,
		apply: noShow,
	},
	domain.ActionRefund: {
		from:  []domain.OrderStatus{domain.StatusPending, domain.StatusConfirmed},
		to:    domain.StatusRefunded,
		apply: refundBooking,
	},
}

func rulesFor(kind domain.OrderKind) map[domain.Action]rule {
	if kind == domain.KindBooking {
		return bookingRules
	}
	return questionRules
}

// Allowed lists the actions defined for kind.
func Allowed(kind domain.OrderKind) []domain.Action {
	rules := rulesFor(kind)
	out := make([]domain.Action, 0, len(rules))
	for a := range rules {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// Plan evaluates action against o without touching storage. On success it
// returns a transition holding an updated copy of o; o itself is never
// modified. Authorization is checked before the source status.
func Plan(o *domain.Order, action domain.Action, actor Actor, p Payload, now time.Time) (*Transition, error) {
	r, ok := rulesFor(o.Kind)[action]
	if !ok {
		return nil, ErrUnknownAction
	}
	if !CanPerform(actor, action, o) {
		return nil, ErrForbidden
	}
	if !slices.Contains(r.from, o.Status) {
		return nil, ErrInvalidTransition
	}

	next := cloneOrder(o)
	t := &Transition{
		Order:    next,
		Action:   action,
		Actor:    actor,
		From:     o.Status,
		To:       r.to,
		Metadata: map[string]any{},
		At:       now,
	}
	if err := r.apply(next, actor, p, t); err != nil {
		return nil, err
	}

	next.Status = r.to
	next.UpdatedAt = now
	if p.Reason != "" {
		t.Metadata["reason"] = p.Reason
	}
	return t, nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	if o.Question != nil {
		q := *o.Question
		c.Question = &q
	}
	return &c
}

// Fee splits price into the platform fee (rounded to cents) and the
// teacher payout.
func Fee(price float64) (fee, payout float64) {
	fee = math.Round(price*PlatformFeeRate*100) / 100
	payout = math.Round((price-fee)*100) / 100
	return fee, payout
}

func stamp(t time.Time) *time.Time { return &t }

func deadlinePassed(o *domain.Order, now time.Time) bool {
	return o.Question != nil && !now.Before(o.Question.Deadline)
}

func acceptQuestion(o *domain.Order, actor Actor, _ Payload, t *Transition) error {
	if deadlinePassed(o, t.At) {
		return ErrDeadlinePassed
	}
	if o.TeacherID == nil {
		id := actor.ID
		o.TeacherID = &id
		t.Metadata["assigned"] = true
	}
	t.Metadata["teacher_id"] = *o.TeacherID
	o.AcceptedAt = stamp(t.At)
	return nil
}

func answerQuestion(o *domain.Order, _ Actor, p Payload, t *Transition) error {
	if p.Answer.IsEmpty() {
		return ErrAnswerRequired
	}
	if deadlinePassed(o, t.At) {
		return ErrDeadlinePassed
	}
	answer := p.Answer
	if o.Question != nil {
		o.Question.SetAnswer(answer)
	}
	t.Answer = &answer
	o.AnsweredAt = stamp(t.At)
	return nil
}

// release pays the teacher out of escrow.
func release(o *domain.Order, t *Transition) {
	fee, payout := Fee(o.Price)
	o.PlatformFee = &fee
	o.TeacherPayout = &payout
	o.PaymentHeld = false
	o.PaymentReleased = true
	t.Metadata["price"] = o.Price
	t.Metadata["platform_fee"] = fee
	t.Metadata["teacher_payout"] = payout
}

// refund returns escrowed funds to the student. Unpaid orders have nothing
// to return.
func refund(o *domain.Order, t *Transition) {
	if !o.PaymentHeld {
		t.Metadata["refunded"] = false
		return
	}
	o.PaymentHeld = false
	o.PaymentStatus = domain.PaymentRefunded
	o.RefundedAt = stamp(t.At)
	t.Metadata["refunded"] = true
	t.Metadata["amount"] = o.Price
}

func complete(o *domain.Order, _ Actor, _ Payload, t *Transition) error {
	if !o.PaymentHeld {
		return ErrNotPaid
	}
	release(o, t)
	o.CompletedAt = stamp(t.At)
	return nil
}

func cancel(o *domain.Order, _ Actor, p Payload, t *Transition) error {
	refund(o, t)
	o.CancelledAt = stamp(t.At)
	o.CancelReason = p.Reason
	return nil
}

func expireQuestion(o *domain.Order, _ Actor, _ Payload, t *Transition) error {
	if !deadlinePassed(o, t.At) {
		return ErrDeadlineNotReached
	}
	refund(o, t)
	o.ExpiredAt = stamp(t.At)
	return nil
}

func refundByAdmin(o *domain.Order, _ Actor, _ Payload, t *Transition) error {
	refund(o, t)
	// admin refunds are recorded even when nothing was held
	if o.RefundedAt == nil {
		o.RefundedAt = stamp(t.At)
	}
	return nil
}

func confirmBooking(o *domain.Order, _ Actor, _ Payload, t *Transition) error {
	if o.PaymentStatus != domain.PaymentCompleted || !o.PaymentHeld {
		return ErrNotPaid
	}
	o.AcceptedAt = stamp(t.At)
	return nil
}

func completeBooking(o *domain.Order, actor Actor, p Payload, t *Transition) error {
	if err := complete(o, actor, p, t); err != nil {
		return err
	}
	t.Slot = SlotMarkCompleted
	return nil
}

func cancelBooking(o *domain.Order, actor Actor, p Payload, t *Transition) error {
	if err := cancel(o, actor, p, t); err != nil {
		return err
	}
	t.Slot = SlotReleaseSeat
	return nil
}

func noShow(o *domain.Order, _ Actor, _ Payload, t *Transition) error {
	if !o.PaymentHeld {
		return ErrNotPaid
	}
	release(o, t)
	o.NoShowAt = stamp(t.At)
	return nil
}

func refundBooking(o *domain.Order, actor Actor, p Payload, t *Transition) error {
	if err := refundByAdmin(o, actor, p, t); err != nil {
		return err
	}
	t.Slot = SlotReleaseSeat
	return nil
}
