package payment

import (
	"fmt"

	"mathtutor/internal/pkg/apperr"
)

var (
	ErrInvalidMethod = apperr.NewValidation("method", "must be one of BANK_TRANSFER, E_WALLET, CREDIT_CARD")
	ErrTokenMismatch = apperr.NewValidation("token", "does not match the initiated payment")
	ErrNotPayable    = fmt.Errorf("%w: only pending bookings awaiting payment can be paid", apperr.ErrInvalidState)
	ErrNotProcessing = fmt.Errorf("%w: payment is not in progress", apperr.ErrInvalidState)
	ErrNotOrderPayer = fmt.Errorf("%w: only the booking student can pay", apperr.ErrForbidden)
)
