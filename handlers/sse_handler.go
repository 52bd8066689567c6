package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"nfl-projections-go/logging"
	"nfl-projections-go/services"
)

// SSE event names.
const (
	EventConnection = "connection"
	EventHeartbeat  = "heartbeat"
	EventRefresh    = "projections-refreshed"
)

// SSEClient represents a connected dashboard client
type SSEClient struct {
	Channel chan string
	Remote  string
}

// SSEHandler streams refresh notifications to dashboards
type SSEHandler struct {
	mu             sync.Mutex
	clients        map[*SSEClient]bool
	messageCounter uint64
	heartbeat      *time.Ticker
	stopHeartbeat  chan struct{}
	stopOnce       sync.Once
	logger         *logging.Logger
}

// NewSSEHandler creates the handler and starts its heartbeat. A zero
// interval disables heartbeats.
func NewSSEHandler(heartbeat time.Duration) *SSEHandler {
	h := &SSEHandler{
		clients:       make(map[*SSEClient]bool),
		stopHeartbeat: make(chan struct{}),
		logger:        logging.WithPrefix("SSE"),
	}
	if heartbeat > 0 {
		h.startHeartbeat(heartbeat)
	}
	return h
}

// ClientCount returns the number of connected clients
func (h *SSEHandler) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handle serves the event stream until the client goes away
func (h *SSEHandler) Handle(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &SSEClient{Channel: make(chan string, 16), Remote: r.RemoteAddr}
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.logger.Infof("New client connected from %s", r.RemoteAddr)

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		h.logger.Infof("Client disconnected (%s)", r.RemoteAddr)
	}()

	fmt.Fprintf(w, "event: %s\ndata: SSE connection established\n\n", EventConnection)
	flusher.Flush()

	for {
		select {
		case message := <-client.Channel:
			fmt.Fprint(w, message)
			flusher.Flush()
		case <-r.Context().Done():
			return
		case <-h.stopHeartbeat:
			return
		}
	}
}

func (h *SSEHandler) getNextMessageID() uint64 {
	return atomic.AddUint64(&h.messageCounter, 1)
}

// BroadcastToAllClients sends one event to every client. Clients whose
// buffer is full miss the event.
func (h *SSEHandler) BroadcastToAllClients(eventType, data string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}

	message := fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.getNextMessageID(), eventType, compactForSSE(data))
	for client := range h.clients {
		select {
		case client.Channel <- message:
		default:
			h.logger.Warnf("Client %s channel full, skipping message", client.Remote)
		}
	}
}

// BroadcastRefresh announces a finished projection refresh as JSON.
func (h *SSEHandler) BroadcastRefresh(ev services.RefreshEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Errorf("Encoding refresh event: %v", err)
		return
	}
	h.BroadcastToAllClients(EventRefresh, string(data))
}

func (h *SSEHandler) startHeartbeat(every time.Duration) {
	h.heartbeat = time.NewTicker(every)
	go func() {
		for {
			select {
			case <-h.heartbeat.C:
				h.BroadcastToAllClients(EventHeartbeat, "keep-alive")
			case <-h.stopHeartbeat:
				h.heartbeat.Stop()
				return
			}
		}
	}()
}

// Stop stops the heartbeat goroutine and ends every open stream
func (h *SSEHandler) Stop() {
	h.stopOnce.Do(func() { close(h.stopHeartbeat) })
}

// compactForSSE keeps a payload on one data line
func compactForSSE(data string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(data)
}
