package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer boots a server on an ephemeral port and returns its base URL
// and a stop func.
func startServer(t *testing.T, pinger Pinger) (string, func()) {
	t.Helper()
	srv := NewServer("127.0.0.1:0", pinger, testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	// Wait for the listener to bind.
	deadline := time.Now().Add(2 * time.Second)
	for srv.BoundAddr() == "" {
		if time.Now().After(deadline) {
			t.Fatal("server did not bind in time")
		}
		time.Sleep(5 * time.Millisecond)
	}

	stop := func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Start returned: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("server did not stop in time")
		}
	}
	return "http://" + srv.BoundAddr(), stop
}

func TestHealthEndpoint(t *testing.T) {
	base, stop := startServer(t, &fakePinger{})
	defer stop()

	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q", body.Status)
	}
	if body.LastHandled != "" {
		t.Errorf("last_handled should be empty before any message, got %q", body.LastHandled)
	}
}

func TestHealthReportsLastHandled(t *testing.T) {
	srv := NewServer("127.0.0.1:0", &fakePinger{}, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Start(ctx) }()
	for srv.BoundAddr() == "" {
		time.Sleep(5 * time.Millisecond)
	}
	defer srv.Stop(context.Background())

	srv.MarkHandled()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", srv.BoundAddr()))
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.LastHandled == "" {
		t.Error("last_handled should be set after MarkHandled")
	}
	if _, err := time.Parse(time.RFC3339, body.LastHandled); err != nil {
		t.Errorf("last_handled not RFC3339: %q", body.LastHandled)
	}
}

func TestReadyEndpoint(t *testing.T) {
	base, stop := startServer(t, &fakePinger{})
	defer stop()

	resp, err := http.Get(base + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestReadyEndpointStoreDown(t *testing.T) {
	base, stop := startServer(t, &fakePinger{err: errors.New("database is locked")})
	defer stop()

	resp, err := http.Get(base + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "unavailable" {
		t.Errorf("status = %q", body["status"])
	}
	if body["error"] == "" {
		t.Error("expected error detail in body")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	base, stop := startServer(t, &fakePinger{})
	defer stop()

	resp, err := http.Post(base+"/health", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestStopBeforeStart(t *testing.T) {
	srv := NewServer("127.0.0.1:0", &fakePinger{}, testLogger())
	if err := srv.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
