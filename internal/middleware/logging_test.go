package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func loggedRequest(t *testing.T, method, path, remote string, handlerStatus int) []observer.LoggedEntry {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(handlerStatus)
	})

	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	Logging(zap.New(core))(handler).ServeHTTP(rec, req)

	if rec.Code != handlerStatus {
		t.Errorf("status passed through = %d, want %d", rec.Code, handlerStatus)
	}
	return logs.All()
}

func TestLoggingCapturesStatusAndClient(t *testing.T) {
	t.Parallel()

	entries := loggedRequest(t, "POST", "/api/items", "10.0.0.1:52100", http.StatusNotFound)
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.InfoLevel || entry.Message != "http_request" {
		t.Errorf("entry = %s %q, want info http_request", entry.Level, entry.Message)
	}

	fields := entry.ContextMap()
	if fields["status_code"] != int64(http.StatusNotFound) {
		t.Errorf("status_code = %v, want 404", fields["status_code"])
	}
	if fields["client_ip"] != "10.0.0.1" {
		t.Errorf("client_ip = %v, want 10.0.0.1", fields["client_ip"])
	}
	if fields["path"] != "/api/items" {
		t.Errorf("path = %v, want /api/items", fields["path"])
	}
}

func TestLoggingImplicitOK(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest("GET", "/api/items", nil)
	rec := httptest.NewRecorder()
	Logging(zap.New(core))(handler).ServeHTTP(rec, req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["status_code"]; got != int64(http.StatusOK) {
		t.Errorf("status_code = %v, want 200 when handler never calls WriteHeader", got)
	}
}

func TestLoggingHealthProbesAtDebug(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/health", "/ready"} {
		entries := loggedRequest(t, "GET", path, "10.0.0.1:52100", http.StatusOK)
		if len(entries) != 1 {
			t.Fatalf("log entries for %s = %d, want 1", path, len(entries))
		}
		if entries[0].Level != zapcore.DebugLevel {
			t.Errorf("level for %s = %s, want debug", path, entries[0].Level)
		}
	}
}
