package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jaennil/brutile/pkg/config"
)

type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

// NewServer builds the tile server. base becomes the context of every
// request, so values such as the logger reach handlers. It is not cancelled
// on shutdown; in-flight tile fetches are drained instead.
func NewServer(base context.Context, cfg config.Server, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			BaseContext: func(net.Listener) context.Context {
				return base
			},
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until stop is done, then waits up to the shutdown timeout for
// open requests. It returns nil after a clean shutdown.
func (s *Server) Run(stop context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	case <-stop.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
