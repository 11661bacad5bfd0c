package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mathtutor/internal/domain"
	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/response"
)

type Handler struct {
	service *Service
	orders  *order.Handler
}

func NewHandler(service *Service, orders *order.Service) *Handler {
	return &Handler{service: service, orders: order.NewHandler(orders, domain.KindBooking)}
}

// RegisterRoutes mounts /slots and /bookings. Payment routes are added to
// the same bookings group by the payment handler.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) *gin.RouterGroup {
	slots := rg.Group("/slots")
	{
		slots.POST("", h.CreateSlot)
		slots.GET("", h.ListSlots)
		slots.GET("/:id", h.GetSlot)
	}

	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		h.orders.RegisterRoutes(bookings)
	}
	return bookings
}

// CreateSlot godoc
// @Summary      Publish a time slot
// @Tags         Slots
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateSlotRequest true "Slot"
// @Success      201 {object} domain.TimeSlot
// @Router       /slots [post]
func (h *Handler) CreateSlot(c *gin.Context) {
	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	slot, err := h.service.CreateSlot(c.Request.Context(), order.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"slot": slot})
}

func (h *Handler) ListSlots(c *gin.Context) {
	var q SlotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	slots, err := h.service.ListSlots(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slots": slots})
}

func (h *Handler) GetSlot(c *gin.Context) {
	id, ok := order.ParseID(c)
	if !ok {
		return
	}
	slot, err := h.service.GetSlot(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

// CreateBooking godoc
// @Summary      Book a time slot
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateBookingRequest true "Booking"
// @Success      201 {object} domain.Order
// @Failure      409 {object} map[string]any
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	b, err := h.service.CreateBooking(c.Request.Context(), order.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ListBookings(c *gin.Context) {
	items, err := h.service.ListBookings(c.Request.Context(), order.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": items})
}
