package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/AlibekovAA/estate-hub/internal/common/logger"
)

func TestRun_ExecutesHooksOnShutdown(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	srv := NewServer(DefaultServerConfig("0"), http.NotFoundHandler())
	srv.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	hookCalled := make(chan struct{}, 1)
	hooks := []ShutdownHook{func(ctx context.Context) error {
		hookCalled <- struct{}{}
		return nil
	}}

	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, log, "test", hooks) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected Run to return after cancel")
	}

	select {
	case <-hookCalled:
	default:
		t.Fatal("expected shutdown hook to run")
	}
}
