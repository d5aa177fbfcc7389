package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/biznet/bn_server/internal/api/middleware"
	"github.com/biznet/bn_server/internal/pkg/jwt"
	"github.com/biznet/bn_server/internal/pkg/response"
	"github.com/biznet/bn_server/internal/pkg/ws"
	"github.com/biznet/bn_server/internal/repository"
)

type NotificationHandler struct {
	notificationRepo *repository.NotificationRepository
	hub              *ws.Hub
	jwtSecret        string
	upgrader         websocket.Upgrader
}

func NewNotificationHandler(notificationRepo *repository.NotificationRepository, hub *ws.Hub, jwtSecret string) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
		hub:              hub,
		jwtSecret:        jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the CORS layer
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// List returns the caller's stored notifications, newest first.
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	notifications, err := h.notificationRepo.ListByUserID(userID, limit)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	unread, err := h.notificationRepo.CountUnread(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, "notifications", gin.H{
		"notifications": notifications,
		"unread":        unread,
	})
}

// MarkRead marks one notification read.
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid notification id")
		return
	}

	if err := h.notificationRepo.MarkRead(userID, notificationID); err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, "notification read", nil)
}

// Stream upgrades to a websocket and pushes live membership notifications.
// Browsers cannot set headers on websocket handshakes, so the token rides
// in the query string.
// GET /api/v1/ws?token=...
func (h *NotificationHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.AuthError(c, "missing token")
		return
	}

	claims, err := jwt.ParseToken(token, h.jwtSecret)
	if err != nil {
		response.AuthError(c, "invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &ws.Client{UserID: claims.UserID, Conn: conn}
	h.hub.Register(client)
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	// Drain the connection; clients only receive.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
