// ABOUTME: WebSocket now-playing hub
// ABOUTME: Pushes play state to connected clients and serves metrics on the same mux
package nowplaying

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/harperreed/crossing-radio/internal/metrics"
)

const (
	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
	sendQueue     = 16
)

// Message is pushed to every client on each state change
type Message struct {
	Type    string    `json:"type"`
	State   string    `json:"state"`
	Session string    `json:"session"`
	At      time.Time `json:"at"`
	Info
}

type hubClient struct {
	conn     *websocket.Conn
	sendChan chan Message
}

// Hub broadcasts now-playing state over WebSocket
type Hub struct {
	session  string
	upgrader websocket.Upgrader
	mux      *http.ServeMux
	logger   zerolog.Logger

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	latest  *Message

	wg sync.WaitGroup
}

// NewHub creates a hub serving /ws, /nowplaying and /metrics
func NewHub(logger zerolog.Logger, m *metrics.Metrics) *Hub {
	h := &Hub{
		session: uuid.New().String(),
		upgrader: websocket.Upgrader{
			// read-only state feed for the local network
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux:     http.NewServeMux(),
		logger:  logger.With().Str("component", "hub").Logger(),
		clients: make(map[*hubClient]struct{}),
	}

	h.mux.HandleFunc("/ws", h.handleWebSocket)
	h.mux.HandleFunc("/nowplaying", h.handleLatest)
	h.mux.Handle("/metrics", m.Handler())
	return h
}

// Handler returns the hub routes
func (h *Hub) Handler() http.Handler {
	return h.mux
}

// Session identifies this player process
func (h *Hub) Session() string {
	return h.session
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Playing pushes a playing message to every client
func (h *Hub) Playing(info Info) error {
	h.broadcast("playing", info)
	return nil
}

// Paused pushes a paused message to every client
func (h *Hub) Paused(info Info) error {
	h.broadcast("paused", info)
	return nil
}

// Serve runs the HTTP server on ln until ctx is done
func (h *Hub) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: h.mux, ReadHeaderTimeout: 5 * time.Second}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()
	h.logger.Info().Str("addr", ln.Addr().String()).Msg("Now-playing hub listening")

	select {
	case err, ok := <-errChan:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		h.logger.Warn().Err(err).Msg("Hub shutdown error")
	}

	h.mu.Lock()
	for c := range h.clients {
		c.conn.Close()
	}
	h.mu.Unlock()
	h.wg.Wait()
	return nil
}

func (h *Hub) broadcast(state string, info Info) {
	msg := Message{Type: "nowplaying", State: state, Session: h.session, At: time.Now(), Info: info}

	h.mu.Lock()
	h.latest = &msg
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.sendChan <- msg:
		default:
			h.logger.Debug().Str("remote", c.conn.RemoteAddr().String()).Msg("Client queue full, dropping update")
		}
	}
}

func (h *Hub) handleLatest(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	latest := h.latest
	h.mu.RUnlock()

	if latest == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(latest); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to write now-playing response")
	}
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}
	defer conn.Close()

	client := &hubClient{conn: conn, sendChan: make(chan Message, sendQueue)}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	if h.latest != nil {
		client.sendChan <- *h.latest
	}
	h.mu.Unlock()
	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("Now-playing client connected")

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.clientWriter(client)
	}()

	// drain reads so close frames and pongs are processed
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Msg("WebSocket read error")
			}
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, client)
	close(client.sendChan)
	h.mu.Unlock()
	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("Now-playing client disconnected")
}

func (h *Hub) clientWriter(c *hubClient) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.sendChan:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteJSON(msg); err != nil {
				h.logger.Debug().Err(err).Msg("Error writing now-playing message")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}
