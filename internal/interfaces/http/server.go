package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
)

// minimalTLSConfig returns a conservative TLS server configuration used
// only if the composition root supplies a certificate/key pair; the
// deployed service normally terminates TLS upstream of this process.
func minimalTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:       tls.VersionTLS12,
		CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256},
	}
}

const (
	defaultHost              = "0.0.0.0"
	defaultPort              = 8080
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 90 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 20 * time.Second
)

// ServerConfig holds the wire-level tunables for the normalization API's
// HTTP listener. It is distinct from config.ServerConfig (the on-disk
// configuration shape): the composition root maps one into the other so
// this package has no dependency on internal/config and can be exercised
// standalone in tests.
type ServerConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	ShutdownTimeout   time.Duration

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set. The
	// deployed service normally terminates TLS at a reverse proxy, so
	// these are left empty by the composition root unless overridden.
	TLSCertFile string
	TLSKeyFile  string
}

func (c *ServerConfig) applyDefaults() {
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if c.MaxHeaderBytes == 0 {
		c.MaxHeaderBytes = defaultMaxHeaderBytes
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
}

func (c *ServerConfig) isTLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func (c *ServerConfig) listenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Server manages the lifecycle of the normalization API's net/http.Server:
// binding a listener up front (so an ephemeral port resolves to a concrete
// address before Start returns control to the caller), serving until the
// caller's context is cancelled, and shutting down within ShutdownTimeout.
type Server struct {
	httpServer *http.Server
	config     ServerConfig
	logger     logging.Logger
	started    atomic.Bool
	actualAddr string
}

// NewServer builds a Server around handler. Zero-value config fields fall
// back to the package defaults.
func NewServer(cfg ServerConfig, handler http.Handler, logger logging.Logger) *Server {
	cfg.applyDefaults()

	srv := &Server{
		config: cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.listenAddr(),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
	}

	if cfg.isTLSEnabled() {
		srv.httpServer.TLSConfig = minimalTLSConfig()
	}

	return srv
}

// Start binds the configured address and serves until ctx is cancelled,
// at which point it runs a graceful Shutdown and returns. A failure to
// bind, or a Serve error other than http.ErrServerClosed, is returned
// immediately.
func (s *Server) Start(ctx context.Context) error {
	if s.started.Swap(true) {
		return errors.New("server already started")
	}

	ln, err := net.Listen("tcp", s.config.listenAddr())
	if err != nil {
		s.started.Store(false)
		return fmt.Errorf("binding %s: %w", s.config.listenAddr(), err)
	}
	s.actualAddr = ln.Addr().String()

	protocol := "http"
	if s.config.isTLSEnabled() {
		protocol = "https"
	}
	s.logger.Info("http listener bound",
		logging.String("protocol", protocol),
		logging.String("address", s.actualAddr),
	)

	served := make(chan error, 1)
	go func() {
		if s.config.isTLSEnabled() {
			served <- s.httpServer.ServeTLS(ln, s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			served <- s.httpServer.Serve(ln)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownErr := s.Shutdown(context.Background())
		if serveErr := <-served; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return shutdownErr
	case serveErr := <-served:
		s.started.Store(false)
		if errors.Is(serveErr, http.ErrServerClosed) {
			return nil
		}
		return serveErr
	}
}

// Shutdown drains in-flight requests within ShutdownTimeout before closing
// the listener. It is safe to call before Start or more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.started.Swap(false) {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http listener", logging.Duration("timeout", s.config.ShutdownTimeout))

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http listener shutdown error", logging.Err(err))
		return fmt.Errorf("shutting down: %w", err)
	}

	s.logger.Info("http listener stopped")
	return nil
}

// Addr returns the address the server actually bound to, which resolves
// an ephemeral (port 0) configuration to its assigned port. Empty before
// Start has bound a listener.
func (s *Server) Addr() string {
	return s.actualAddr
}

// IsRunning reports whether the listener is currently accepting
// connections.
func (s *Server) IsRunning() bool {
	return s.started.Load()
}

// Config returns the effective (defaults-applied) configuration.
func (s *Server) Config() ServerConfig {
	return s.config
}
