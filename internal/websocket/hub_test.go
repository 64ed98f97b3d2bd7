package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func waitForSubscribers(t *testing.T, hub *Hub, documentID uuid.UUID, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		got := len(hub.clients[documentID])
		hub.mu.RUnlock()
		if got == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d subscribers for document %s", want, documentID)
}

func TestHubDeliversProgressToSubscriber(t *testing.T) {
	hub := NewHub(nopLogger{})
	go hub.Run()

	documentID := uuid.New()
	client := &Client{Hub: hub, DocumentID: documentID, Send: make(chan []byte, 4)}
	hub.register <- client
	waitForSubscribers(t, hub, documentID, 1)

	hub.SendProgress(documentID, ProgressFrame{Phase: PhaseGenerating, TurnID: "t1", ChunkCount: 3})

	select {
	case frame := <-client.Send:
		assert.Contains(t, string(frame), `"type":"progress"`)
		assert.Contains(t, string(frame), PhaseGenerating)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered to subscriber")
	}
}

func TestHubDropsSlowClientAndKeepsRunning(t *testing.T) {
	hub := NewHub(nopLogger{})
	go hub.Run()

	documentID := uuid.New()
	slow := &Client{Hub: hub, DocumentID: documentID, Send: make(chan []byte)}
	hub.register <- slow
	waitForSubscribers(t, hub, documentID, 1)

	// Nothing drains slow.Send, so both broadcasts hit the full-buffer
	// path and hand the client to the unregister loop.
	hub.SendProgress(documentID, ProgressFrame{Phase: PhaseGenerating, TurnID: "t1", ChunkCount: 1})
	hub.SendDocument(documentID, map[string]string{"id": documentID.String()})
	waitForSubscribers(t, hub, documentID, 0)

	// The run loop must survive the drop: a fresh client can still
	// register and receive frames on the same document.
	fresh := &Client{Hub: hub, DocumentID: documentID, Send: make(chan []byte, 4)}
	hub.register <- fresh
	waitForSubscribers(t, hub, documentID, 1)

	hub.SendProgress(documentID, ProgressFrame{Phase: PhasePriced, TurnID: "t2", ChunkCount: 9})

	select {
	case frame := <-fresh.Send:
		assert.Contains(t, string(frame), PhasePriced)
	case <-time.After(time.Second):
		t.Fatal("hub stopped delivering after dropping a slow client")
	}

	// The dropped client's channel was closed exactly once, by the
	// unregister loop.
	_, open := <-slow.Send
	assert.False(t, open)
}
