package ranking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mathtutor/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/teachers/ranking", h.Ranking)
}

// Ranking godoc
// @Summary      Teacher ranking
// @Description  Recomputed on every request.
// @Tags         Teachers
// @Produce      json
// @Success      200 {array} TeacherStats
// @Router       /teachers/ranking [get]
func (h *Handler) Ranking(c *gin.Context) {
	items, err := h.service.Teachers(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"teachers": items})
}
