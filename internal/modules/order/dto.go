package order

import "mathtutor/internal/domain"

type TransitionRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason" binding:"max=1000"`

	AnswerText     string `json:"answer_text"`
	AnswerImageURL string `json:"answer_image_url"`
	AnswerAudioURL string `json:"answer_audio_url"`
	AnswerVideoURL string `json:"answer_video_url"`
}

func (r TransitionRequest) Payload() Payload {
	return Payload{
		Reason: r.Reason,
		Answer: domain.Content{
			Text:     r.AnswerText,
			ImageURL: r.AnswerImageURL,
			AudioURL: r.AnswerAudioURL,
			VideoURL: r.AnswerVideoURL,
		},
	}
}

// Actions callers may request over HTTP. CONFIRM is reserved for payment.
func externalAction(kind domain.OrderKind, a domain.Action) bool {
	if a == domain.ActionConfirm {
		return false
	}
	_, ok := rulesFor(kind)[a]
	return ok
}
