package catalog

import "mathtutor/internal/domain"

// ---------- COURSES ----------

type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=5000"`
	Price       float64 `json:"price" validate:"gte=0"`
	IsPublished bool    `json:"is_published"`
}

type CourseQuery struct {
	TeacherID int64 `form:"teacher_id"`
}

// ---------- CHALLENGES ----------

type CreateChallengeRequest struct {
	Title      string            `json:"title" validate:"required,max=255"`
	Body       string            `json:"body" validate:"required"`
	Difficulty domain.Difficulty `json:"difficulty" validate:"required,oneof=EASY MEDIUM HARD"`
	Answer     string            `json:"answer" validate:"required,max=255"`
}

type AttemptRequest struct {
	Answer string `json:"answer" validate:"required,max=255"`
}

type AttemptResult struct {
	ChallengeID int64 `json:"challenge_id"`
	Correct     bool  `json:"correct"`
}
