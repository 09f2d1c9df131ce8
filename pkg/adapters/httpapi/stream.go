package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// StreamManager handles active SSE connections, one subscriber set per tree.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // TreeID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(treeID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[treeID]; !ok {
		sm.subscribers[treeID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[treeID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[treeID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, treeID)
			}
		}
	}
}

// Broadcast pushes a page update to every subscriber of the tree.
func (sm *StreamManager) Broadcast(treeID string, update *domain.PageUpdate) {
	if update == nil {
		return
	}
	payload, err := json.Marshal(update)
	if err != nil {
		return
	}
	msg := string(payload)

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[treeID]; ok {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				slog.Warn("SSE: Client buffer full, dropping message", "tree_id", treeID)
			}
		}
	}
}

// StreamUpdates handles GET /trees/{treeID}/stream (SSE). Each page update
// produced by render or event dispatch on the tree is pushed as one event.
func (s *Server) StreamUpdates(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "treeID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("StreamUpdates: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to tree updates", "tree_id", treeID)

	ch, cancel := s.Streams.Subscribe(treeID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "tree_id", treeID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
