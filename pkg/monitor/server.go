// Package monitor publishes a live view of a spec run: an event
// collector fed by the runner, a dashboard model and an HTTP
// server streaming events over WebSocket next to Prometheus
// metrics.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"digital.vasic.specs/pkg/logging"
)

// Message is the envelope sent to WebSocket clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Overridable for tests.
var jsonMarshal = json.Marshal

const writeWait = 5 * time.Second

// Server serves the monitor endpoints:
//
//	/ws         WebSocket stream of events, starting with a dashboard snapshot
//	/dashboard  JSON dashboard snapshot
//	/metrics    Prometheus exposition
//	/health     liveness
type Server struct {
	addr      string
	collector *EventCollector
	dashboard *DashboardData
	gatherer  prometheus.Gatherer
	logger    logging.Logger
	upgrader  websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	server  *http.Server
	quit    chan struct{}
	once    sync.Once
}

type client struct {
	send chan []byte
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(s *Server) { s.gatherer = g }
}

// WithServerLogger sets the server logger.
func WithServerLogger(l logging.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a monitor server. Events emitted by collector
// update dashboard and are broadcast to connected clients.
func NewServer(
	addr string,
	collector *EventCollector,
	dashboard *DashboardData,
	opts ...ServerOption,
) *Server {
	s := &Server{
		addr:      addr,
		collector: collector,
		dashboard: dashboard,
		gatherer:  prometheus.DefaultGatherer,
		logger:    logging.NullLogger{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		quit:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	collector.OnEvent(func(event ExampleEvent) {
		s.dashboard.UpdateFromEvent(event)
		data, err := jsonMarshal(Message{Type: "event", Data: event})
		if err != nil {
			s.logger.Warn("monitor_marshal_failed", logging.ErrorField(err))
			return
		}
		s.broadcast(data)
	})
	return s
}

// Handler returns the monitor routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.Handle("/metrics", promhttp.HandlerFor(
		s.gatherer, promhttp.HandlerOpts{},
	))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start serves until ctx is done or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	select {
	case <-s.quit:
		return nil
	default:
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop(context.Background())
		case <-s.quit:
		}
	}()

	s.logger.Info("monitor_started", logging.StringField("addr", s.addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("monitor server: %w", err)
	}
	return nil
}

// Stop disconnects clients and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.once.Do(func() { close(s.quit) })
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// Clients returns the number of connected WebSocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket_upgrade_failed", logging.ErrorField(err))
		return
	}
	defer func() { _ = conn.Close() }()

	c := &client{send: make(chan []byte, 64)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()

	snap, err := jsonMarshal(Message{
		Type: "dashboard", Data: s.dashboard.Snapshot(),
	})
	if err != nil {
		s.logger.Warn("monitor_marshal_failed", logging.ErrorField(err))
		return
	}
	if err := s.write(conn, snap); err != nil {
		return
	}

	// Reads only detect the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-s.quit:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait))
			return
		case data := <-c.send:
			if err := s.write(conn, data); err != nil {
				return
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteMessage(websocket.TextMessage, data)
	if err != nil {
		s.logger.Debug("websocket_write_failed", logging.ErrorField(err))
	}
	return err
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	data, err := jsonMarshal(s.dashboard.Snapshot())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) broadcast(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Client too slow, skip
		}
	}
}
