package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type dbPingerMock struct {
	PingFunc func(ctx context.Context) error
}

func (m *dbPingerMock) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

func TestHealth_OK(t *testing.T) {
	h := NewHealthHandler(&dbPingerMock{
		PingFunc: func(context.Context) error { return nil },
	}, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"version":"1.2.3"`) {
		t.Errorf("version missing: %s", rec.Body.String())
	}
}

func TestReady_DatabaseDownIs503(t *testing.T) {
	h := NewHealthHandler(&dbPingerMock{
		PingFunc: func(context.Context) error { return errors.New("connection refused") },
	}, "dev")

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want 503", rec.Code)
	}
}

func TestLive_Always200(t *testing.T) {
	h := NewHealthHandler(&dbPingerMock{
		PingFunc: func(context.Context) error { return errors.New("down") },
	}, "dev")

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	h.Live(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
}
