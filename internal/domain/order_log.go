package domain

import "time"

// OrderLog is one append-only audit record. ActorID is nil for system
// transitions; Metadata holds a JSON object.
type OrderLog struct {
	ID         int64       `json:"id" gorm:"primaryKey"`
	OrderID    int64       `json:"order_id" gorm:"not null;index"`
	ActorID    *int64      `json:"actor_id,omitempty"`
	ActorRole  string      `json:"actor_role" gorm:"size:16;not null"`
	FromStatus OrderStatus `json:"from_status" gorm:"size:32"`
	ToStatus   OrderStatus `json:"to_status" gorm:"size:32;not null"`
	Action     Action      `json:"action" gorm:"size:32;not null"`
	Metadata   string      `json:"metadata" gorm:"type:text"`
	CreatedAt  time.Time   `json:"created_at"`
}
