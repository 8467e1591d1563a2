package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/demeter/metrics"
	"github.com/yeremiapane/demeter/utils"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client owns the only writer goroutine of its connection.
type client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

func (cl *client) writeLoop(h *Hub) {
	for msg := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			utils.ErrorLogger.WithError(err).WithField("role", cl.role).Error("kds send failed")
			h.UnregisterClient(cl.conn)
			return
		}
	}
}

// Hub holds every connected kitchen display client (chef, staff, admin) and
// fans engine events out to them. Broadcast never waits on a socket.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// RegisterClient -> adds a connection with its role and starts its writer
func (h *Hub) RegisterClient(conn *websocket.Conn, role string) {
	cl := &client{conn: conn, role: role, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = cl
	metrics.KDSClients.Set(float64(len(h.clients)))
	h.mutex.Unlock()

	go cl.writeLoop(h)
}

// UnregisterClient -> drops and closes a connection
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.remove(conn)
}

// remove must be called with h.mutex held.
func (h *Hub) remove(conn *websocket.Conn) {
	cl, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(cl.send)
	_ = conn.Close()
	metrics.KDSClients.Set(float64(len(h.clients)))
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Notify broadcasts an engine event.
func (h *Hub) Notify(event string, data interface{}) {
	h.Broadcast(Message{Event: event, Data: data})
}

// Broadcast queues msg for every client. A client whose queue is full is too
// slow to keep up and gets disconnected.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).WithField("event", msg.Event).Error("marshal kds message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	var slow []*client
	for _, cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			slow = append(slow, cl)
		}
	}
	for _, cl := range slow {
		utils.ErrorLogger.WithFields(logrus.Fields{"role": cl.role, "event": msg.Event}).Warn("disconnecting slow kds client")
		h.remove(cl.conn)
	}
	utils.InfoLogger.WithFields(logrus.Fields{"event": msg.Event, "clients": len(h.clients)}).Debug("kds broadcast")
}
