package payment

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mathtutor/internal/domain"
	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes adds the payment endpoints to the /bookings group.
func (h *Handler) RegisterRoutes(bookings *gin.RouterGroup) {
	bookings.POST("/:id/payment", h.Initiate)
	bookings.POST("/:id/payment/process", h.Process)
}

// Initiate godoc
// @Summary      Start paying for a booking
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id   path int             true "Booking ID"
// @Param        body body InitiateRequest true "Payment method"
// @Success      200 {object} InitiateResponse
// @Router       /bookings/{id}/payment [post]
func (h *Handler) Initiate(c *gin.Context) {
	id, ok := order.ParseID(c)
	if !ok {
		return
	}
	var req InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	method := domain.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.Method)))
	resp, err := h.service.Initiate(c.Request.Context(), order.ActorFrom(c), id, method)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Process godoc
// @Summary      Settle a simulated payment
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id   path int            true "Booking ID"
// @Param        body body ProcessRequest true "Outcome"
// @Router       /bookings/{id}/payment/process [post]
func (h *Handler) Process(c *gin.Context) {
	id, ok := order.ParseID(c)
	if !ok {
		return
	}
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	b, err := h.service.Complete(c.Request.Context(), order.ActorFrom(c), id, req.Token, *req.Success)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}
