package question

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
	return &Handler{service: service, orders: order.NewHandler(orders, domain.KindQuestion)}
}

// RegisterRoutes mounts /questions on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/questions")
	{
		g.POST("", h.Create)
		g.GET("", h.List)
		h.orders.RegisterRoutes(g)
	}
}

// Create godoc
// @Summary      Ask a paid question
// @Tags         Questions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateQuestionRequest true "Question"
// @Success      201 {object} domain.Order
// @Router       /questions [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	q, err := h.service.Create(c.Request.Context(), order.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

func (h *Handler) List(c *gin.Context) {
	open := c.Query("open") == "true"
	items, err := h.service.List(c.Request.Context(), order.ActorFrom(c), open)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": items})
}
