package live

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/instrument"
	"github.com/vango-dev/uielement/pkg/reactive"
)

// ErrMaxSessionsReached is returned when the session limit is reached.
var ErrMaxSessionsReached = errors.New("live: maximum sessions reached")

// Config configures a Manager.
type Config struct {
	// Page is the HTML document every session starts from.
	Page string

	// MaxSessions limits concurrent sessions. Zero means no limit.
	MaxSessions int

	// ReadTimeout closes sessions that stay silent this long (default: 60s).
	ReadTimeout time.Duration

	// WriteTimeout bounds each write (default: 10s).
	WriteTimeout time.Duration

	// CheckOrigin is passed to the WebSocket upgrader. nil accepts
	// same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// Logger is the session logger (default: slog.Default()).
	Logger *slog.Logger

	// Metrics, if set, records session gauges and event counts.
	Metrics *instrument.Metrics
}

// Manager creates and tracks live sessions. It implements http.Handler for
// the WebSocket endpoint.
type Manager struct {
	config   Config
	registry *dom.Registry
	loop     *reactive.EventLoop
	upgrader websocket.Upgrader
	logger   *slog.Logger
	metrics  *instrument.Metrics

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions upgrade against reg and run
// on loop.
func NewManager(reg *dom.Registry, loop *reactive.EventLoop, config Config) *Manager {
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 60 * time.Second
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		config:   config,
		registry: reg,
		loop:     loop,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger:   logger.With("component", "live"),
		metrics:  config.Metrics,
		sessions: make(map[string]*Session),
	}
}

// ServeHTTP upgrades the request and serves the session until it closes.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m.full() {
		http.Error(w, ErrMaxSessionsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("upgrade failed", "error", err)
		return
	}

	s, err := m.Create(conn, CodecFor(r))
	if err != nil {
		m.logger.Warn("session rejected", "error", err)
		conn.Close()
		return
	}
	s.readLoop()
}

func (m *Manager) full() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions
}

// Create starts a session on an upgraded connection. A nil codec means JSON.
func (m *Manager) Create(conn *websocket.Conn, codec Codec) (*Session, error) {
	if codec == nil {
		codec = JSON
	}
	s := newSession(m, conn, codec)

	m.mu.Lock()
	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		m.mu.Unlock()
		return nil, ErrMaxSessionsReached
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionOpened()
	}
	if err := s.start(m.config.Page, m.registry); err != nil {
		s.Close()
		return nil, err
	}

	m.logger.Info("session created",
		"session_id", s.ID,
		"remote_addr", conn.RemoteAddr().String(),
		"codec", codec.Name(),
		"active_sessions", m.Count())
	return s, nil
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	_, ok := m.sessions[s.ID]
	delete(m.sessions, s.ID)
	m.mu.Unlock()

	if ok && m.metrics != nil {
		m.metrics.SessionClosed()
	}
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll closes every open session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
