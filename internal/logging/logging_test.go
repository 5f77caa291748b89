package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observe installs an in-memory global logger for the duration of the test.
func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func serve(t *testing.T, route RouteFunc, status int, path string) {
	t.Helper()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
	req := httptest.NewRequest("GET", path, nil)
	RequestLogger(route)(inner).ServeHTTP(httptest.NewRecorder(), req)
}

func TestSetupDevMode(t *testing.T) {
	restore := zap.ReplaceGlobals(zap.NewNop())
	defer restore()

	logger, err := Setup(true)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug enabled in dev mode")
	}
	if zap.L() != logger {
		t.Error("expected Setup to replace the global logger")
	}
}

func TestSetupProdMode(t *testing.T) {
	restore := zap.ReplaceGlobals(zap.NewNop())
	defer restore()

	logger, err := Setup(false)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug disabled in prod mode")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("expected info enabled in prod mode")
	}
}

func TestRequestLogger(t *testing.T) {
	logs := observe(t)

	serve(t, nil, http.StatusOK, "/records")

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != "GET" {
		t.Errorf("method = %v", fields["method"])
	}
	if fields["path"] != "/records" {
		t.Errorf("path = %v", fields["path"])
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Errorf("level = %v, want info", entries[0].Level)
	}
}

func TestRequestLoggerSkipsNoisyPaths(t *testing.T) {
	for _, path := range []string{"/uploads/a.jpg", "/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			logs := observe(t)
			serve(t, nil, http.StatusOK, path)
			if logs.Len() > 0 {
				t.Errorf("expected no log for %s", path)
			}
		})
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	tests := []struct {
		status int
		want   zapcore.Level
	}{
		{http.StatusCreated, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		logs := observe(t)
		serve(t, nil, tt.status, "/experts")

		entries := logs.All()
		if len(entries) != 1 {
			t.Fatalf("status %d: got %d entries", tt.status, len(entries))
		}
		if entries[0].Level != tt.want {
			t.Errorf("status %d: level = %v, want %v", tt.status, entries[0].Level, tt.want)
		}
		if got := entries[0].ContextMap()["status"]; got != int64(tt.status) {
			t.Errorf("status field = %v, want %d", got, tt.status)
		}
	}
}

func TestRequestLoggerCountsByRoute(t *testing.T) {
	observe(t)
	route := func(*http.Request) string { return "/records/{id}" }

	counter := requestsTotal.WithLabelValues("GET", "/records/{id}", "404")
	before := testutil.ToFloat64(counter)

	serve(t, route, http.StatusNotFound, "/records/abc")
	serve(t, route, http.StatusNotFound, "/records/def")

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("counter delta = %v, want 2", got)
	}
}
