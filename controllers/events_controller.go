package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"rageroom-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type EventsController struct {
	Hub      *services.EventHub
	Logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewEventsController(hub *services.EventHub, logger *slog.Logger) *EventsController {
	return &EventsController{
		Hub:    hub,
		Logger: logger,
		upgrader: websocket.Upgrader{
			// CORS already restricts browser origins for the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GET /api/bookings/events (websocket, admin only)
func (ctrl *EventsController) Stream(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if !a.IsAdmin {
		respondError(c, services.ErrForbidden)
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		ctrl.Logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := services.NewEventClient(16)
	if !ctrl.Hub.Register(client) {
		conn.Close()
		return
	}
	ctrl.Logger.Info("event stream connected", "user_id", a.UserID)

	go ctrl.writePump(conn, client)
	ctrl.readPump(conn)

	ctrl.Hub.Unregister(client)
	ctrl.Logger.Info("event stream disconnected", "user_id", a.UserID)
}

// readPump only drains control frames; the feed is one way.
func (ctrl *EventsController) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (ctrl *EventsController) writePump(conn *websocket.Conn, client *services.EventClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
