package hub

import (
	"encoding/json"
	"sync"

	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gorilla/websocket"
)

// Event types
const (
	EventTableUpdate         = "table_update"
	EventTableCreate         = "table_create"
	EventReservationCreated  = "reservation_created"
	EventReservationComplete = "reservation_completed"
	EventStaffNotif          = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub -> menampung koneksi websocket staff (floor view) dan menyiarkan
// perubahan meja dan reservasi. A nil *Hub drops every broadcast.
type Hub struct {
	clients map[Conn]string // conn -> role
	mutex   sync.Mutex
	// OnChange is called with +1/-1 when a client joins or leaves.
	OnChange func(delta float64)
}

func New() *Hub {
	return &Hub{clients: make(map[Conn]string)}
}

func (h *Hub) Register(conn Conn, role string) {
	h.mutex.Lock()
	h.clients[conn] = role
	h.mutex.Unlock()
	if h.OnChange != nil {
		h.OnChange(1)
	}
}

func (h *Hub) Unregister(conn Conn) {
	h.mutex.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mutex.Unlock()

	_ = conn.Close()
	if ok && h.OnChange != nil {
		h.OnChange(-1)
	}
}

func (h *Hub) Count() int {
	if h == nil {
		return 0
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) BroadcastTableUpdate(table models.Table) {
	h.Broadcast(Message{Event: EventTableUpdate, Data: table})
}

func (h *Hub) BroadcastTableCreate(table models.Table) {
	h.Broadcast(Message{Event: EventTableCreate, Data: table})
}

// BroadcastReservation -> reservasi baru atau selesai, beserta status meja
func (h *Hub) BroadcastReservation(event string, res models.Reservation, table *models.Table) {
	data := map[string]interface{}{"reservation": res}
	if table != nil {
		data["table"] = table
	}
	h.Broadcast(Message{Event: event, Data: data})
}

func (h *Hub) BroadcastStaffNotification(message string) {
	h.Broadcast(Message{Event: EventStaffNotif, Data: message})
}

// Broadcast writes msg to every client. Clients that fail a write are dropped.
func (h *Hub) Broadcast(msg Message) {
	if h == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("hub: marshal %s: %v", msg.Event, err)
		return
	}

	h.mutex.Lock()
	var dead []Conn
	for conn, role := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Warnf("hub: write to %s client failed: %v", role, err)
			dead = append(dead, conn)
		}
	}
	h.mutex.Unlock()

	for _, conn := range dead {
		h.Unregister(conn)
	}
}
