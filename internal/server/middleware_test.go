package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *strings.Builder) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// =============================================================================
// RequestIDMiddleware Tests
// =============================================================================

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	RequestIDMiddleware(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.True(t, strings.HasPrefix(seen, RequestIDPrefix), seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	assert.NotContains(t, seen, "-")
}

func TestRequestIDMiddleware_UniqueIDs(t *testing.T) {
	wrapped := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec1 := httptest.NewRecorder()
	wrapped.ServeHTTP(rec1, httptest.NewRequest("GET", "/", nil))
	rec2 := httptest.NewRecorder()
	wrapped.ServeHTTP(rec2, httptest.NewRequest("GET", "/", nil))

	assert.NotEqual(t, rec1.Header().Get(RequestIDHeader), rec2.Header().Get(RequestIDHeader))
}

func TestRequestIDMiddleware_CallerID(t *testing.T) {
	wrapped := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "req_retry1")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	assert.Equal(t, "req_retry1", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "not-ours")
	rec = httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-ours", rec.Header().Get(RequestIDHeader))
}

func TestGetRequestID_NotSet(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

// =============================================================================
// TimeoutMiddleware Tests
// =============================================================================

func TestTimeoutMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Deadline()
		assert.True(t, ok, "expected context to have deadline")
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	TimeoutMiddleware(30*time.Second)(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTimeoutMiddleware_ContextCancelled(t *testing.T) {
	cancelled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			cancelled = true
		case <-time.After(time.Second):
		}
	})

	TimeoutMiddleware(10*time.Millisecond)(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.True(t, cancelled, "expected context to be cancelled due to timeout")
}

func TestTimeoutMiddleware_Disabled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Deadline()
		assert.False(t, ok)
	})
	TimeoutMiddleware(0)(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}

// =============================================================================
// LoggingMiddleware Tests
// =============================================================================

func TestLoggingMiddleware(t *testing.T) {
	var buf strings.Builder
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddLogField(r.Context(), "protocol", "anthropic")
		AddLogField(r.Context(), "empty_field", "")
		_, _ = w.Write([]byte("OK"))
	})

	wrapped := RequestIDMiddleware(LoggingMiddleware(newTestLogger(&buf))(testHandler))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("GET", "/test-path", nil))

	output := buf.String()
	assert.Contains(t, output, "request completed")
	assert.Contains(t, output, "level=INFO")
	assert.Contains(t, output, "path=/test-path")
	assert.Contains(t, output, "status=200")
	assert.Contains(t, output, "protocol=anthropic")
	assert.Contains(t, output, "request_id="+rec.Header().Get(RequestIDHeader))
	assert.NotContains(t, output, "empty_field")
}

func TestLoggingMiddleware_Levels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusBadRequest, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf strings.Builder
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			LoggingMiddleware(newTestLogger(&buf))(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/", nil))
			assert.Contains(t, buf.String(), tt.level)
		})
	}
}

func TestAddError(t *testing.T) {
	var buf strings.Builder
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddError(r.Context(), errors.New("test error message"))
		AddError(r.Context(), nil)
		w.WriteHeader(http.StatusInternalServerError)
	})

	LoggingMiddleware(newTestLogger(&buf))(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Contains(t, buf.String(), `error="test error message"`)
}

func TestAddLogField_NoContext(t *testing.T) {
	assert.NotPanics(t, func() {
		AddLogField(context.Background(), "key", "value")
		AddError(context.Background(), errors.New("x"))
	})
}

func TestServerRecoversPanics(t *testing.T) {
	var buf strings.Builder
	srv := New(Options{Port: 0, RequestTimeout: time.Second}, newTestLogger(&buf))
	srv.Router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}
