package domain

import "time"

// Endorsement is a lifetime badge from a student to a teacher, one per pair.
type Endorsement struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	StudentID int64     `json:"student_id" gorm:"not null;uniqueIndex:idx_endorsement_pair"`
	TeacherID int64     `json:"teacher_id" gorm:"not null;uniqueIndex:idx_endorsement_pair;index"`
	CreatedAt time.Time `json:"created_at"`
}

type Rating struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OrderID   int64     `json:"order_id" gorm:"not null;uniqueIndex"`
	StudentID int64     `json:"student_id" gorm:"not null;index"`
	TeacherID int64     `json:"teacher_id" gorm:"not null;index"`
	Stars     int       `json:"stars" gorm:"not null"`
	Comment   string    `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
