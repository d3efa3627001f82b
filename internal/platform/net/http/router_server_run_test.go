package http_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"brushline/internal/platform/config"
	phttp "brushline/internal/platform/net/http"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func waitUp(t *testing.T, url string) *http.Response {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		res, err := http.Get(url)
		if err == nil {
			return res
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	addr := freeAddr(t)
	t.Setenv("PORT", addr)

	optCalled := false
	srv := phttp.NewServer(config.New(), func(*chi.Mux) { optCalled = true })
	if !optCalled {
		t.Fatalf("NewServer option not called")
	}
	srv.Router().Get("/timeline/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	res := waitUp(t, "http://"+addr+"/timeline/ping")
	_ = res.Body.Close()
	if res.StatusCode != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", res.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v, want nil after cancel", err)
		}
	case <-time.After(phttp.ShutdownGrace):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestServer_ShutdownReturnsNil(t *testing.T) {
	addr := freeAddr(t)
	t.Setenv("PORT", addr)
	srv := phttp.NewServer(config.New())

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()
	res := waitUp(t, "http://"+addr+"/nope")
	_ = res.Body.Close()

	sctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Run = %v", err)
	}
}

func TestNewServer_AddrFromEnv(t *testing.T) {
	t.Setenv("PORT", ":12345")
	if got := phttp.NewServer(config.New()).Addr(); got != ":12345" {
		t.Fatalf("Addr = %q, want :12345", got)
	}
	t.Setenv("PORT", "")
	if got := phttp.NewServer(config.New()).Addr(); got != ":4000" {
		t.Fatalf("default Addr = %q, want :4000", got)
	}
}

func TestServer_Run_ReturnsListenError(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:abc")
	if err := phttp.NewServer(config.New()).Run(context.Background()); err == nil {
		t.Fatalf("expected listen error")
	}
}
