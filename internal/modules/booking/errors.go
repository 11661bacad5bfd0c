package booking

import (
	"fmt"

	"mathtutor/internal/pkg/apperr"
)

var (
	ErrTeachersOnly    = fmt.Errorf("%w: only teachers can publish time slots", apperr.ErrForbidden)
	ErrStudentsOnly    = fmt.Errorf("%w: only students can book time slots", apperr.ErrForbidden)
	ErrSlotNotFound    = fmt.Errorf("%w: time slot not found", apperr.ErrNotFound)
	ErrSlotUnavailable = fmt.Errorf("%w: time slot is not open for booking", apperr.ErrInvalidState)
	ErrSlotInPast      = fmt.Errorf("%w: time slot has already started", apperr.ErrInvalidState)
	ErrSlotFull        = fmt.Errorf("%w: time slot is fully booked", apperr.ErrConflict)
	ErrAlreadyBooked   = fmt.Errorf("%w: you already hold a booking on this slot", apperr.ErrConflict)
	ErrPriceTooLow     = apperr.NewValidation("price", "must not be below the slot minimum price")
	ErrInvalidPeriod   = apperr.NewValidation("end_time", "must be after start_time")
	ErrStartInPast     = apperr.NewValidation("start_time", "must be in the future")
	ErrCapacity        = apperr.NewValidation("max_students", "must be at least min_students")
)
