package booking

import "time"

type CreateSlotRequest struct {
	Title          string    `json:"title" validate:"max=255"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" validate:"required"`
	IsGroupSession bool      `json:"is_group_session"`
	MinStudents    int       `json:"min_students" validate:"omitempty,gte=1,lte=50"`
	MaxStudents    int       `json:"max_students" validate:"omitempty,gte=1,lte=50"`
	MinPrice       float64   `json:"min_price" validate:"gte=0"`
}

type CreateBookingRequest struct {
	TimeSlotID int64 `json:"time_slot_id" validate:"required,gt=0"`
	// Price defaults to the slot minimum.
	Price *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

type SlotQuery struct {
	TeacherID int64  `form:"teacher_id"`
	Status    string `form:"status"`
	Upcoming  bool   `form:"upcoming"`
}
