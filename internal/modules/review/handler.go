package review

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	// Public routes (no auth required)
	if public != nil {
		public.GET("/teachers/:id/endorsements", h.ListEndorsements)
		public.GET("/teachers/:id/ratings", h.ListRatings)
	}

	// Protected routes (auth required)
	if protected != nil {
		protected.POST("/endorsements", h.Endorse)
		protected.POST("/ratings", h.Rate)
	}
}

// Endorse godoc
// @Summary      Endorse a teacher
// @Description  Allowed once per teacher, after at least one completed order with them.
// @Tags         Reviews
// @Security     BearerAuth
// @Param        body body EndorseRequest true "Teacher"
// @Success      201 {object} domain.Endorsement
// @Failure      403 {object} map[string]any "No completed order with this teacher"
// @Failure      409 {object} map[string]any "Already endorsed"
// @Router       /endorsements [post]
func (h *Handler) Endorse(c *gin.Context) {
	var req EndorseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	e, err := h.svc.Endorse(c.Request.Context(), order.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"endorsement": e})
}

func (h *Handler) ListEndorsements(c *gin.Context) {
	id, ok := order.ParseID(c)
	if !ok {
		return
	}
	out, err := h.svc.Endorsements(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// Rate godoc
// @Summary      Rate a completed order
// @Tags         Reviews
// @Security     BearerAuth
// @Param        body body RateRequest true "Rating"
// @Success      201 {object} domain.Rating
// @Failure      409 {object} map[string]any "Already rated"
// @Router       /ratings [post]
func (h *Handler) Rate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	r, err := h.svc.Rate(c.Request.Context(), order.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"rating": r})
}

func (h *Handler) ListRatings(c *gin.Context) {
	id, ok := order.ParseID(c)
	if !ok {
		return
	}
	items, err := h.svc.Ratings(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ratings": items})
}
