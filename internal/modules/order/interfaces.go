package order

import (
	"time"

	"mathtutor/internal/domain"
)

// Event describes one committed order change.
type Event struct {
	OrderID   int64              `json:"order_id"`
	Kind      domain.OrderKind   `json:"kind"`
	Action    domain.Action      `json:"action"`
	From      domain.OrderStatus `json:"from_status"`
	To        domain.OrderStatus `json:"to_status"`
	StudentID int64              `json:"student_id"`
	TeacherID *int64             `json:"teacher_id,omitempty"`
	At        time.Time          `json:"at"`
}

// Recipients are the users the event concerns.
func (e Event) Recipients() []int64 {
	out := []int64{e.StudentID}
	if e.TeacherID != nil && *e.TeacherID != e.StudentID {
		out = append(out, *e.TeacherID)
	}
	return out
}

// EventPublisher receives events after their transaction commits.
type EventPublisher interface {
	PublishOrderEvent(ev Event)
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderEvent(Event) {}

func EventFor(o *domain.Order, action domain.Action, from, to domain.OrderStatus, at time.Time) Event {
	return Event{
		OrderID:   o.ID,
		Kind:      o.Kind,
		Action:    action,
		From:      from,
		To:        to,
		StudentID: o.StudentID,
		TeacherID: o.TeacherID,
		At:        at,
	}
}
