package websocket

import (
	"encoding/json"
	"sync"

	"sow-studio-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Progress phases pushed while a turn is streaming.
const (
	PhaseGenerating = "generating"
	PhaseAdjusting  = "adjusting"
	PhasePriced     = "priced"
)

// ProgressFrame is the payload delivered to document subscribers while
// the assistant response is in flight.
type ProgressFrame struct {
	Phase      string `json:"phase"`
	TurnID     string `json:"turnId"`
	ChunkCount int    `json:"chunkCount"`
	Preview    string `json:"preview,omitempty"`
}

type Hub struct {
	// Registered clients map: DocumentID -> List of Clients (multi-tab)
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.DocumentID] = append(h.clients[client.DocumentID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"document_id": client.DocumentID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.DocumentID]; ok {
				for i, c := range clients {
					if c == client {
						// Remove from slice
						h.clients[client.DocumentID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.DocumentID]) == 0 {
					delete(h.clients, client.DocumentID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"document_id": client.DocumentID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendProgress pushes a progress frame to every client watching the
// given document. Slow clients are dropped rather than blocking the
// streaming goroutine.
func (h *Hub) SendProgress(documentID uuid.UUID, frame ProgressFrame) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "progress",
		"data": frame,
	})
	h.broadcast(documentID, data)
}

// SendDocument pushes the synced document payload after a turn lands.
func (h *Hub) SendDocument(documentID uuid.UUID, payload interface{}) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "document",
		"data": payload,
	})
	h.broadcast(documentID, data)
}

// broadcast delivers a frame to every subscriber of the document. Clients
// whose Send buffer is full are handed to the unregister loop, which is
// the only place a Send channel is ever closed.
func (h *Hub) broadcast(documentID uuid.UUID, data []byte) {
	var dropped []*Client

	h.mu.RLock()
	for _, client := range h.clients[documentID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"document_id": documentID})
			dropped = append(dropped, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range dropped {
		h.unregister <- client
	}
}
