package handler

import (
	"net/http"

	"complaintdesk/backend/internal/chathub"
	"complaintdesk/backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and subscribes it to dashboard events.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Component("ws").WithError(err).Warn("Failed to upgrade connection")
		return
	}

	client := chathub.NewWebSocketClient(conn, h.Hub)
	if !h.Hub.Register(client) {
		conn.Close()
		return
	}
	client.Run()
}
