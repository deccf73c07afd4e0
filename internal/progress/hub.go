// Package progress broadcasts scrape lifecycle events to connected
// websocket clients so the front-end can show what a long-running request
// is doing. Delivery is best-effort; a slow or dead client is dropped.
package progress

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Event is one lifecycle notification tied to a correlation id.
type Event struct {
	Type    string    `json:"type"`
	Site    string    `json:"site"`
	UID     string    `json:"uid"`
	Message string    `json:"message,omitempty"`
	Count   int       `json:"count,omitempty"`
	At      time.Time `json:"at"`
}

const (
	EventCatalogStarted  = "catalog.started"
	EventCatalogDone     = "catalog.done"
	EventChaptersStarted = "chapters.started"
	EventChaptersDone    = "chapters.done"
	EventDownloadStarted = "download.started"
	EventDownloadDone    = "download.done"
	EventBookReady       = "book.ready"
	EventFailed          = "failed"
)

// Publish stamps and broadcasts an event.
func (h *Hub) Publish(ev Event) {
	ev.At = time.Now().UTC()

	b, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}
