package payment

import "mathtutor/internal/domain"

type InitiateRequest struct {
	Method string `json:"method" binding:"required"`
}

type InitiateResponse struct {
	Token         string               `json:"token"`
	PaymentURL    string               `json:"payment_url"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
}

type ProcessRequest struct {
	Token   string `json:"token" binding:"required"`
	Success *bool  `json:"success" binding:"required"`
}
