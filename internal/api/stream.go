package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"neurodetect/internal/storage"
)

// streamHub fans completed analyses out to connected WebSocket clients so a
// monitoring frontend can show results as they arrive.
type streamHub struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex
	broadcast chan storage.AnalysisRecord
	stop      chan struct{}
}

func newStreamHub() *streamHub {
	return &streamHub{
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan storage.AnalysisRecord, 100),
		stop:      make(chan struct{}),
	}
}

// run delivers broadcasts until close is called. Slow or dead clients are
// dropped on write failure.
func (h *streamHub) run() {
	for {
		select {
		case <-h.stop:
			h.closeClients()
			return
		case record := <-h.broadcast:
			h.clientsMu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.clientsMu.RUnlock()

			for _, conn := range conns {
				if err := conn.WriteJSON(record); err != nil {
					log.Debug().Err(err).Msg("dropping stream client")
					h.remove(conn)
				}
			}
		}
	}
}

// notify queues a completed analysis for broadcast, dropping it when the
// queue is full rather than blocking the request path.
func (h *streamHub) notify(record storage.AnalysisRecord) {
	select {
	case h.broadcast <- record:
	default:
	}
}

func (h *streamHub) close() {
	close(h.stop)
}

func (h *streamHub) remove(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
	}
	h.clientsMu.Unlock()
}

func (h *streamHub) closeClients() {
	h.clientsMu.Lock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
	h.clientsMu.Unlock()
}

// handleStream upgrades the connection and registers it for result broadcasts.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.hub.clientsMu.Lock()
	s.hub.clients[conn] = true
	s.hub.clientsMu.Unlock()

	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("stream client connected")

	// reader loop detects disconnects; inbound messages are ignored
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
