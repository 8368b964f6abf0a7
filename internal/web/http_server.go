package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTPServer serves the settings API until its context ends or Stop is
// called. A stopped server cannot be restarted.
type HTTPServer struct {
	Addr    string
	DevMode bool
	Deps    APIV1Deps

	// PreviewRequestsPerMinute is passed to RouterConfig.
	PreviewRequestsPerMinute int

	mu       sync.Mutex
	srv      *http.Server
	ln       net.Listener
	closed   bool
	done     chan struct{}
	serveErr error
}

func NewHTTPServer(cfg ServerConfig, deps APIV1Deps) *HTTPServer {
	return &HTTPServer{
		Addr:                     cfg.ListenAddr,
		DevMode:                  cfg.DevMode,
		Deps:                     deps.withDefaults(),
		PreviewRequestsPerMinute: cfg.PreviewRequestsPerMinute,
	}
}

func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("web server already stopped")
	}
	if s.srv != nil {
		return nil
	}

	addr := s.Addr
	if addr == "" {
		addr = DefaultListenAddr
	}
	deps := s.Deps.withDefaults()

	s.srv = &http.Server{
		Addr: addr,
		Handler: NewRouter(RouterConfig{
			Deps:                     deps,
			DevMode:                  s.DevMode,
			PreviewRequestsPerMinute: s.PreviewRequestsPerMinute,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.srv = nil
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	s.done = make(chan struct{})
	deps.Logger.Infof("web", "listening on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	srv, done := s.srv, s.done
	go func() {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Errorf("web", "serve: %v", err)
			s.mu.Lock()
			s.serveErr = err
			s.mu.Unlock()
		}
		close(done)
	}()

	return nil
}

// ListenAddr reports the bound address, which differs from Addr when it
// asked for port 0.
func (s *HTTPServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Wait blocks until the server has stopped serving and returns the serve
// error, if any.
func (s *HTTPServer) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
