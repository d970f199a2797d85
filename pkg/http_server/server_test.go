package http_server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jaennil/brutile/pkg/config"
)

func testConfig(port string) config.Server {
	return config.Server{
		Port:            port,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
	}
}

func TestRunStopsOnContext(t *testing.T) {
	s := NewServer(context.Background(), testConfig("0"), http.NotFoundHandler())

	stop, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(stop) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after stop")
	}
}

func TestRunReportsListenError(t *testing.T) {
	s := NewServer(context.Background(), testConfig("-1"), http.NotFoundHandler())

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Run = nil, want listen error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not fail on a bad port")
	}
}
