package controllers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"bus_service/internal/services"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin policy is enforced by the CORS layer
	},
}

// ChangeHub fans bus and route change events out to websocket subscribers.
type ChangeHub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan services.ChangeEvent
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
}

// NewChangeHub creates a hub and starts its broadcast loop.
func NewChangeHub() *ChangeHub {
	hub := &ChangeHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan services.ChangeEvent, 100),
		done:      make(chan struct{}),
	}
	go hub.run()
	return hub
}

// Publish queues an event. Events are dropped when the queue is full.
func (h *ChangeHub) Publish(event services.ChangeEvent) {
	select {
	case <-h.done:
	case h.broadcast <- event:
	default:
		logrus.WithField("type", event.Type).Warn("change hub queue full, dropping event")
	}
}

func (h *ChangeHub) run() {
	for {
		select {
		case <-h.done:
			return
		case event := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(event); err != nil {
					logrus.WithError(err).Warn("dropping websocket subscriber after failed write")
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *ChangeHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *ChangeHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// ClientCount reports the number of connected subscribers.
func (h *ChangeHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close stops the broadcast loop and disconnects every subscriber.
func (h *ChangeHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
}

// HandleChanges upgrades the request and streams change events until the
// client disconnects. Incoming messages are discarded.
func (h *ChangeHub) HandleChanges(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).WithFields(requestFields(c)).Warn("websocket upgrade failed")
		return
	}
	h.register(conn)
	logrus.WithFields(requestFields(c)).Info("change subscriber connected")

	defer func() {
		h.unregister(conn)
		logrus.WithFields(requestFields(c)).Info("change subscriber disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Warn("websocket read error")
			}
			return
		}
	}
}
