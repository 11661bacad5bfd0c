package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects a group already guarded by RequireRole(ADMIN).
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	// users moderation
	admin.GET("/users", h.GetUsers)
	admin.POST("/users/:id/ban", h.BanUser)
	admin.POST("/users/:id/unban", h.UnbanUser)

	// orders
	admin.POST("/orders/expire", h.ExpireOrders)
}

func (h *Handler) GetUsers(c *gin.Context) {
	role := c.DefaultQuery("role", "TEACHER")
	users, err := h.service.ListUsers(c.Request.Context(), order.ActorFrom(c), role)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// BanUser godoc
// @Summary      Ban a user
// @Description  Banned users are rejected by every authenticated endpoint. Admins cannot be banned.
// @Tags         Admin
// @Security     BearerAuth
// @Param        id   path int        true  "User ID"
// @Param        body body BanRequest false "Reason"
// @Success      200 {object} domain.User
// @Failure      403 {object} map[string]any
// @Failure      404 {object} map[string]any
// @Router       /admin/users/{id}/ban [post]
func (h *Handler) BanUser(c *gin.Context) {
	id, ok := order.ParseID(c)
	if !ok {
		return
	}
	var req BanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}
	user, err := h.service.Ban(c.Request.Context(), order.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UnbanUser(c *gin.Context) {
	id, ok := order.ParseID(c)
	if !ok {
		return
	}
	user, err := h.service.Unban(c.Request.Context(), order.ActorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// ExpireOrders godoc
// @Summary      Run the expiry sweep now
// @Tags         Admin
// @Security     BearerAuth
// @Success      200 {object} ExpireResult
// @Router       /admin/orders/expire [post]
func (h *Handler) ExpireOrders(c *gin.Context) {
	res, err := h.service.ExpireNow(c.Request.Context(), order.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
