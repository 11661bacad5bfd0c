package domain

import "time"

type OrderKind string

const (
	KindBooking  OrderKind = "BOOKING"
	KindQuestion OrderKind = "QUESTION"
)

type OrderStatus string

// Question statuses. PENDING and COMPLETED are shared with bookings.
const (
	StatusPending   OrderStatus = "PENDING"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusAnswered  OrderStatus = "ANSWERED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusExpired   OrderStatus = "EXPIRED"
	StatusRefunded  OrderStatus = "REFUNDED"
)

// Booking statuses.
const (
	StatusConfirmed          OrderStatus = "CONFIRMED"
	StatusCancelledByStudent OrderStatus = "CANCELLED_BY_STUDENT"
	StatusCancelledByTeacher OrderStatus = "CANCELLED_BY_TEACHER"
	StatusNoShow             OrderStatus = "NO_SHOW"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodEWallet      PaymentMethod = "E_WALLET"
	MethodCreditCard   PaymentMethod = "CREDIT_CARD"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodEWallet, MethodCreditCard:
		return true
	}
	return false
}

// Action tags a transition request and the resulting order log entry.
type Action string

const (
	ActionCreate          Action = "CREATE"
	ActionAccept          Action = "ACCEPT"
	ActionAnswer          Action = "ANSWER"
	ActionComplete        Action = "COMPLETE"
	ActionCancel          Action = "CANCEL"
	ActionExpire          Action = "EXPIRE"
	ActionRefund          Action = "REFUND"
	ActionConfirm         Action = "CONFIRM"
	ActionCancelByStudent Action = "CANCEL_BY_STUDENT"
	ActionCancelByTeacher Action = "CANCEL_BY_TEACHER"
	ActionNoShow          Action = "NO_SHOW"

	ActionPaymentInitiated Action = "PAYMENT_INITIATED"
	ActionPaymentCompleted Action = "PAYMENT_COMPLETED"
	ActionPaymentFailed    Action = "PAYMENT_FAILED"
)

// Order is a booking or a paid question. Kind specific data lives in
// TimeSlotID (bookings) and Question (questions).
type Order struct {
	ID         int64       `json:"id" gorm:"primaryKey"`
	Kind       OrderKind   `json:"kind" gorm:"size:16;not null;index"`
	StudentID  int64       `json:"student_id" gorm:"not null;index;uniqueIndex:idx_orders_active_booking,where:kind = 'BOOKING' AND (status = 'PENDING' OR status = 'CONFIRMED')"`
	TeacherID  *int64      `json:"teacher_id,omitempty" gorm:"index"`
	TimeSlotID *int64      `json:"time_slot_id,omitempty" gorm:"index;uniqueIndex:idx_orders_active_booking,where:kind = 'BOOKING' AND (status = 'PENDING' OR status = 'CONFIRMED')"`
	Price      float64     `json:"price" gorm:"not null"`
	Status     OrderStatus `json:"status" gorm:"size:32;not null;index"`

	PaymentStatus   PaymentStatus `json:"payment_status" gorm:"size:16;not null"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty" gorm:"size:32"`
	PaymentToken    string        `json:"-" gorm:"size:64"`
	PaymentHeld     bool          `json:"payment_held" gorm:"not null;default:false"`
	PaymentReleased bool          `json:"payment_released" gorm:"not null;default:false"`
	PlatformFee     *float64      `json:"platform_fee,omitempty"`
	TeacherPayout   *float64      `json:"teacher_payout,omitempty"`
	CancelReason    string        `json:"cancel_reason,omitempty" gorm:"type:text"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	AnsweredAt  *time.Time `json:"answered_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
	NoShowAt    *time.Time `json:"no_show_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Question *QuestionContent `json:"question,omitempty" gorm:"foreignKey:OrderID"`
}

func (o *Order) IsQuestion() bool { return o.Kind == KindQuestion }
func (o *Order) IsBooking() bool  { return o.Kind == KindBooking }

// IsTerminal reports whether no further transition can leave the status.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusExpired, StatusRefunded,
		StatusCancelledByStudent, StatusCancelledByTeacher, StatusNoShow:
		return true
	}
	return false
}

// Content is the multi-modal body of a question or an answer.
type Content struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

func (c Content) IsEmpty() bool {
	return c.Text == "" && c.ImageURL == "" && c.AudioURL == "" && c.VideoURL == ""
}

// QuestionContent is the question payload of a QUESTION order.
type QuestionContent struct {
	ID            int64     `json:"-" gorm:"primaryKey"`
	OrderID       int64     `json:"-" gorm:"not null;uniqueIndex"`
	Title         string    `json:"title" gorm:"size:255"`
	Subject       string    `json:"subject,omitempty" gorm:"size:64"`
	ResponseHours int       `json:"response_hours" gorm:"not null"`
	Deadline      time.Time `json:"deadline" gorm:"not null;index"`

	Text     string `json:"text,omitempty" gorm:"type:text"`
	ImageURL string `json:"image_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`

	AnswerText     string `json:"answer_text,omitempty" gorm:"type:text"`
	AnswerImageURL string `json:"answer_image_url,omitempty"`
	AnswerAudioURL string `json:"answer_audio_url,omitempty"`
	AnswerVideoURL string `json:"answer_video_url,omitempty"`
}

func (q *QuestionContent) Body() Content {
	return Content{Text: q.Text, ImageURL: q.ImageURL, AudioURL: q.AudioURL, VideoURL: q.VideoURL}
}

func (q *QuestionContent) SetAnswer(c Content) {
	q.AnswerText = c.Text
	q.AnswerImageURL = c.ImageURL
	q.AnswerAudioURL = c.AudioURL
	q.AnswerVideoURL = c.VideoURL
}
