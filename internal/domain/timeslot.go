package domain

import "time"

type SlotStatus string

const (
	SlotAvailable SlotStatus = "AVAILABLE"
	SlotBooked    SlotStatus = "BOOKED"
	SlotCancelled SlotStatus = "CANCELLED"
	SlotCompleted SlotStatus = "COMPLETED"
)

// TimeSlot is a teacher-defined bookable interval. BookedCount counts seats
// held by PENDING or CONFIRMED bookings and never exceeds MaxStudents.
type TimeSlot struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	TeacherID      int64      `json:"teacher_id" gorm:"not null;index"`
	Title          string     `json:"title,omitempty" gorm:"size:255"`
	StartTime      time.Time  `json:"start_time" gorm:"not null;index"`
	EndTime        time.Time  `json:"end_time" gorm:"not null"`
	MinStudents    int        `json:"min_students" gorm:"not null;default:1"`
	MaxStudents    int        `json:"max_students" gorm:"not null;default:1"`
	IsGroupSession bool       `json:"is_group_session" gorm:"not null;default:false"`
	MinPrice       float64    `json:"min_price" gorm:"not null"`
	Status         SlotStatus `json:"status" gorm:"size:16;not null;index"`
	BookedCount    int        `json:"booked_count" gorm:"not null;default:0"`
	MeetingLink    string     `json:"meeting_link,omitempty"`
	ChatLink       string     `json:"chat_link,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (s *TimeSlot) HasFreeSeat() bool {
	return s.BookedCount < s.MaxStudents
}
