package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestLoggingMiddleware(t *testing.T) {
	logger, logs := observed()

	var ctxID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = RequestIDFromContext(r.Context())
		w.Write([]byte(`{"success":true}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/trades?days=7", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	LoggingMiddleware(logger)(handler).ServeHTTP(w, req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	entry := entries[0]
	fields := entry.ContextMap()

	if entry.Level != zapcore.InfoLevel {
		t.Errorf("expected info level, got %s", entry.Level)
	}
	if fields["method"] != "GET" || fields["path"] != "/api/trades" || fields["status"] != int64(200) {
		t.Errorf("unexpected fields %v", fields)
	}
	if fields["client_ip"] != "192.168.1.1:12345" {
		t.Errorf("unexpected client_ip %v", fields["client_ip"])
	}

	headerID := w.Header().Get(RequestIDHeader)
	if headerID == "" || headerID != ctxID || fields["request_id"] != headerID {
		t.Errorf("request ID mismatch: header %q, context %q, log %v", headerID, ctxID, fields["request_id"])
	}
}

func TestLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	logger, logs := observed()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodPost, "/api/trades", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 172.16.0.1")
	w := httptest.NewRecorder()
	LoggingMiddleware(logger)(handler).ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("expected echoed request ID, got %q", got)
	}
	fields := logs.All()[0].ContextMap()
	if fields["request_id"] != "req-123" || fields["client_ip"] != "10.0.0.7" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   zapcore.Level
	}{
		{http.StatusCreated, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusUnauthorized, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		logger, logs := observed()
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})
		LoggingMiddleware(logger)(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if got := logs.All()[0].Level; got != tt.want {
			t.Errorf("status %d: expected %s, got %s", tt.status, tt.want, got)
		}
	}
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := RequestIDFromContext(req.Context()); id != "" {
		t.Errorf("expected empty ID, got %q", id)
	}
}
