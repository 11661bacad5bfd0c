package order

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mathtutor/internal/domain"
	"mathtutor/internal/pkg/response"
)

// Handler serves the read and transition endpoints shared by questions and
// bookings. One handler instance is bound to one order kind.
type Handler struct {
	service *Service
	kind    domain.OrderKind
}

func NewHandler(service *Service, kind domain.OrderKind) *Handler {
	return &Handler{service: service, kind: kind}
}

// RegisterRoutes mounts GET /:id, PATCH /:id and GET /:id/logs on g.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Transition)
	g.GET("/:id/logs", h.Logs)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}
	o, err := h.service.Get(c.Request.Context(), h.kind, id, ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": o})
}

func (h *Handler) Transition(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	action := domain.Action(strings.ToUpper(strings.TrimSpace(req.Action)))
	if !externalAction(h.kind, action) {
		response.FromError(c, ErrUnknownAction)
		return
	}

	o, err := h.service.Apply(c.Request.Context(), Command{
		OrderID: id,
		Kind:    h.kind,
		Action:  action,
		Actor:   ActorFrom(c),
		Payload: req.Payload(),
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": o})
}

func (h *Handler) Logs(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}
	logs, err := h.service.Logs(c.Request.Context(), h.kind, id, ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logs": logs})
}

// ActorFrom reads the identity set by the auth middleware. Requests
// without identity never map to the system actor.
func ActorFrom(c *gin.Context) Actor {
	id := c.GetInt64("user_id")
	role := c.GetString("role")
	if id <= 0 {
		return Actor{ID: -1}
	}
	return Actor{ID: id, Role: domain.UserRole(role)}
}

// ParseID reads the :id path parameter, answering 400 when it is invalid.
func ParseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return 0, false
	}
	return id, true
}
