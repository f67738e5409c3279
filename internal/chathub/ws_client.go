package chathub

import (
	"sync"
	"time"

	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// WebSocketClient implements Client for a dashboard browser tab.
type WebSocketClient struct {
	ID   string
	Conn *websocket.Conn
	Hub  *ManagerService
	Send chan models.Event

	closeOnce sync.Once
}

func NewWebSocketClient(conn *websocket.Conn, hub *ManagerService) *WebSocketClient {
	return &WebSocketClient{
		ID:   uuid.NewString(),
		Conn: conn,
		Hub:  hub,
		Send: make(chan models.Event, sendBuffer),
	}
}

func (c *WebSocketClient) GetClientID() string                 { return c.ID }
func (c *WebSocketClient) GetSendChannel() chan<- models.Event { return c.Send }

func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close stops the write pump, which then closes the connection.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// readPump only watches for disconnects; dashboards do not send commands.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Component("ws").WithError(err).WithField("client_id", c.ID).Debug("Read error")
			}
			return
		}
	}
}

// writePump writes each event as one JSON text frame and keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(ev); err != nil {
				logger.Component("ws").WithError(err).WithField("client_id", c.ID).Debug("Write error")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
