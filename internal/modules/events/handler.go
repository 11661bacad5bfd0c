package events

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mathtutor/internal/domain"
	"mathtutor/internal/pkg/jwt"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/pkg/response"
)

type tokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type userLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Handler struct {
	hub      *Hub
	jwt      tokenValidator
	users    userLookup
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler builds the websocket endpoint. allowOrigin decides which
// browser origins may open a socket; requests without an Origin header
// (non-browser clients) are let through and rely on the token alone.
func NewHandler(hub *Hub, jwt tokenValidator, users userLookup, allowOrigin func(string) bool, log *zap.Logger) *Handler {
	h := &Handler{hub: hub, jwt: jwt, users: users, log: logger.OrNop(log)}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || (allowOrigin != nil && allowOrigin(origin))
		},
	}
	return h
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/orders", h.Serve)
}

// Serve upgrades to a websocket streaming order events for the caller.
//
// Endpoint: GET /ws/orders?token=JWT_TOKEN
//
// Browsers cannot set headers on websocket requests, so the token may come
// from the query string; an Authorization header also works. Browsers do not
// preflight the upgrade, so the origin is checked here rather than by CORS.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	}
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token is required")
		return
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
		return
	}

	u, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Account not found")
			return
		}
		h.log.Error("websocket user lookup failed", zap.Int64(logger.FieldUserID, claims.UserID), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	if u.IsBanned {
		response.Error(c, http.StatusForbidden, "ACCOUNT_BANNED", "Account is banned")
		return
	}

	if !h.upgrader.CheckOrigin(c.Request) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN_ORIGIN", "Origin not allowed")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.log.Debug("websocket connected", zap.Int64(logger.FieldUserID, u.ID))
	h.hub.ServeWS(conn, u.ID)
}
