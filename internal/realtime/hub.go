// Package realtime pushes order and chat changes to connected browsers over
// WebSocket, so dashboards update without polling.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// Update is the frame sent to every client.
type Update struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	count      atomic.Int64
	upgrader   websocket.Upgrader
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader:   websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		log:        log.With("component", "live_hub"),
	}
}

// Run owns the client set until ctx ends, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for cl := range h.clients {
				h.drop(cl)
			}
			return
		case cl := <-h.register:
			h.clients[cl] = struct{}{}
			h.updateCount()
			h.log.Debug("live_client_connected", "total", len(h.clients))
		case cl := <-h.unregister:
			if _, ok := h.clients[cl]; ok {
				h.drop(cl)
				h.log.Debug("live_client_disconnected", "total", len(h.clients))
			}
		case msg := <-h.broadcast:
			for cl := range h.clients {
				select {
				case cl.send <- msg:
				default:
					h.log.Warn("live_client_dropped", "reason", "send buffer full")
					h.drop(cl)
				}
			}
		}
	}
}

func (h *Hub) drop(cl *client) {
	delete(h.clients, cl)
	close(cl.send)
	h.updateCount()
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.LiveClients.Set(float64(len(h.clients)))
}

func (h *Hub) ClientCount() int { return int(h.count.Load()) }

// Notify queues an update for every connected client. It never blocks; an
// update is dropped when the hub is saturated.
func (h *Hub) Notify(ctx context.Context, kind string, data any) {
	msg, err := json.Marshal(Update{Type: kind, Data: data, At: time.Now().UTC()})
	if err != nil {
		logging.FromContext(ctx).Error("live_update_encode_failed", "type", kind, "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		logging.FromContext(ctx).Warn("live_update_dropped", "type", kind, "reason", "hub saturated")
	}
}

// Serve upgrades the request to a WebSocket and registers the connection.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already answered the request
		logging.FromContext(c.Request().Context()).Warn("live_upgrade_failed", "error", err)
		return nil
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return nil
	}

	go h.writePump(cl)
	go h.readPump(cl)
	return nil
}

// readPump only services control frames; clients have nothing to say.
func (h *Hub) readPump(cl *client) {
	defer func() {
		select {
		case h.unregister <- cl:
		case <-h.done:
		}
		cl.conn.Close()
	}()

	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("live_client_closed", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
