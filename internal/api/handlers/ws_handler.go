package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/clockpro/backend/internal/realtime"
)

type WSHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

type wsClientMsg struct {
	Event string `json:"event"`
}

// timeSyncFrame answers a client's time_sync request with the server clock
// so clients can correct local timer drift.
func timeSyncFrame(now time.Time) []byte {
	b, _ := json.Marshal(map[string]any{
		"event": "time_sync",
		"data": map[string]any{
			"serverTime": now.UTC().Format(time.RFC3339Nano),
			"unix":       now.UnixMilli(),
		},
	})
	return b
}

// Connect upgrades the request and joins the connection to the user's room.
// Lifecycle and settings events are produced by the REST handlers; this
// endpoint is the delivery side of the sync. Clients only send ping and
// time_sync frames here.
func (h *WSHandler) Connect(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response in most cases
		return
	}
	defer conn.Close()

	reg := h.hub.Register(userID)
	defer h.hub.Unregister(reg.ID)

	wc := &wsConn{c: conn}

	// writer: hub outbox -> WS. Exits when the hub closes the outbox.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for frame := range reg.Outbox() {
			if err := wc.writeText(frame); err != nil {
				return
			}
		}
	}()

	// reader: keeps the connection alive and detects disconnects.
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		select {
		case <-writeDone:
			return
		default:
		}

		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeText([]byte(`{"event":"error","code":"INVALID_ARGUMENT","message":"invalid json"}`))
			continue
		}

		switch msg.Event {
		case "ping":
			_ = wc.writeText([]byte(`{"event":"pong"}`))
		case "time_sync":
			_ = wc.writeText(timeSyncFrame(time.Now()))
		default:
			_ = wc.writeText([]byte(`{"event":"error","code":"INVALID_ARGUMENT","message":"unknown event"}`))
		}
	}
}
