package domain

import "time"

type Course struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	TeacherID   int64     `json:"teacher_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"not null"`
	IsPublished bool      `json:"is_published" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

type Challenge struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	AuthorID   int64      `json:"author_id" gorm:"not null;index"`
	Title      string     `json:"title" gorm:"size:255;not null"`
	Body       string     `json:"body" gorm:"type:text"`
	Difficulty Difficulty `json:"difficulty" gorm:"size:16;not null"`
	AnswerHash string     `json:"-" gorm:"size:64;not null"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ChallengeAttempt struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	ChallengeID int64     `json:"challenge_id" gorm:"not null;index"`
	StudentID   int64     `json:"student_id" gorm:"not null;index"`
	Correct     bool      `json:"correct"`
	CreatedAt   time.Time `json:"created_at"`
}
