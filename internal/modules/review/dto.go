package review

import "mathtutor/internal/domain"

type EndorseRequest struct {
	TeacherID int64 `json:"teacher_id" validate:"required,gt=0"`
}

type RateRequest struct {
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Stars   int    `json:"stars" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type EndorsementList struct {
	TeacherID    int64                `json:"teacher_id"`
	Count        int64                `json:"count"`
	Endorsements []domain.Endorsement `json:"endorsements"`
}
