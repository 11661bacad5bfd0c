package question

import "mathtutor/internal/domain"

// MinPrice is the lowest price a question can be posted for.
const MinPrice = 5.00

type CreateQuestionRequest struct {
	Title         string  `json:"title" validate:"max=255"`
	Subject       string  `json:"subject" validate:"max=64"`
	Price         float64 `json:"price" validate:"gte=5"`
	ResponseHours int     `json:"response_hours" validate:"oneof=6 24 72"`
	TeacherID     *int64  `json:"teacher_id,omitempty" validate:"omitempty,gt=0"`

	Text     string `json:"text"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
	AudioURL string `json:"audio_url" validate:"omitempty,url"`
	VideoURL string `json:"video_url" validate:"omitempty,url"`
}

func (r CreateQuestionRequest) Content() domain.Content {
	return domain.Content{Text: r.Text, ImageURL: r.ImageURL, AudioURL: r.AudioURL, VideoURL: r.VideoURL}
}
