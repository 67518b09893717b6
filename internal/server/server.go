package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/bootstrap"
	"github.com/muurk/blegw/internal/cfgjson"
	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
	"github.com/muurk/blegw/internal/mqttcheck"
)

const (
	// maxBodySize bounds a posted configuration document.
	maxBodySize = 64 << 10

	defaultRateClients = 256
	shutdownTimeout    = 10 * time.Second
)

// Config holds the server configuration
type Config struct {
	Listen      string
	RateLimit   float64 // Requests per second per client, 0 disables
	RateBurst   int
	RateClients int    // Number of clients tracked by the limiter
	TLSCert     string // Optional; TLS is used when both paths are set
	TLSKey      string
}

// ConfigStore is the running gateway configuration. *cfgmgr.Manager
// satisfies it.
type ConfigStore interface {
	Get() (*gwcfg.Config, error)
	Update(cfg *gwcfg.Config) error
	IsEmpty() bool
}

// MQTTChecker tests a broker connection.
type MQTTChecker func(ctx context.Context, cfg gwcfg.MQTTConfig) mqttcheck.Result

// Option customizes a Server.
type Option func(*Server)

// WithStorageStatus sets the source of the storage block in UI documents.
func WithStorageStatus(fn func() cfgjson.StorageStatus) Option {
	return func(s *Server) { s.storageStatus = fn }
}

// WithNetworkState sets the source of the connectivity state.
func WithNetworkState(fn func() bootstrap.State) Option {
	return func(s *Server) { s.networkState = fn }
}

// WithMQTTChecker replaces the broker check used by /api/check-mqtt.
func WithMQTTChecker(fn MQTTChecker) Option {
	return func(s *Server) { s.checkMQTT = fn }
}

// Server is the local configuration endpoint.
type Server struct {
	config    Config
	store     ConfigStore
	hub       *Hub
	limiter   *clientLimiter
	upgrader  websocket.Upgrader
	tlsConfig *tls.Config

	storageStatus func() cfgjson.StorageStatus
	networkState  func() bootstrap.State
	checkMQTT     MQTTChecker

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// New creates a new Server instance
func New(config Config, store ConfigStore, opts ...Option) (*Server, error) {
	if config.RateClients <= 0 {
		config.RateClients = defaultRateClients
	}

	s := &Server{
		config:        config,
		store:         store,
		hub:           NewHub(),
		storageStatus: func() cfgjson.StorageStatus { return cfgjson.StorageStatus{} },
		networkState:  func() bootstrap.State { return bootstrap.State{} },
		checkMQTT:     mqttcheck.Check,
	}
	for _, opt := range opts {
		opt(s)
	}

	if config.RateLimit > 0 {
		limiter, err := newClientLimiter(config.RateLimit, config.RateBurst, config.RateClients)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		s.limiter = limiter
	}

	if config.TLSCert != "" && config.TLSKey != "" {
		tlsConfig, err := NewTLSConfig(config.TLSCert, config.TLSKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		s.tlsConfig = tlsConfig
	}

	return s, nil
}

// Handler returns the HTTP handler with every route and middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ruuvi.json", s.requireAuth(accessRead, s.handleGetConfig))
	mux.HandleFunc("POST /ruuvi.json", s.requireAuth(accessWrite, s.handlePostConfig))
	mux.HandleFunc("GET /status", s.requireAuth(accessRead, s.handleStatus))
	mux.HandleFunc("POST /api/check-mqtt", s.requireAuth(accessWrite, s.handleCheckMQTT))
	mux.HandleFunc("GET /ws", s.requireAuth(accessRead, s.handleWebSocket))

	return s.logRequests(s.rateLimit(mux))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         s.tlsConfig,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.listener = ln
	s.mu.Unlock()

	go s.hub.Run(ctx)

	logging.Info("Configuration server listening",
		zap.String("addr", ln.Addr().String()),
		zap.Any("tls_info", GetTLSInfo(s.tlsConfig)),
		zap.Bool("rate_limit", s.limiter != nil),
	)

	errChan := make(chan error, 1)
	go func() {
		if s.tlsConfig != nil {
			errChan <- srv.ServeTLS(ln, "", "")
		} else {
			errChan <- srv.Serve(ln)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Addr returns the listening address once Start has bound it.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down configuration server...")

	s.hub.CloseAll()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return srv.Close()
	}
	return nil
}

// ActiveClients returns the number of connected websocket clients.
func (s *Server) ActiveClients() int {
	return s.hub.Count()
}

// NotifyConfigChanged pushes the UI rendering of cfg to websocket clients.
// A nil cfg means the configuration was reset.
func (s *Server) NotifyConfigChanged(cfg *gwcfg.Config) {
	if cfg == nil {
		s.hub.Broadcast(Message{Type: MessageConfigReset})
		return
	}
	doc, err := cfgjson.EncodeForUI(cfg, s.storageStatus())
	if err != nil {
		logging.Error("Failed to encode config for websocket clients", zap.Error(err))
		return
	}
	s.hub.Broadcast(Message{Type: MessageConfig, Data: doc})
}

// NotifyNetwork pushes a connectivity state change to websocket clients.
func (s *Server) NotifyNetwork(st bootstrap.State) {
	s.hub.Broadcast(Message{Type: MessageStatus, Data: mustJSON(s.status(st))})
}
