package frontdoor

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/polyglot-translate/internal/server"
)

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(opts)
	h.now = func() time.Time { return time.Unix(1700000000, 0) }

	r := chi.NewRouter()
	r.Use(server.RequestIDMiddleware)
	h.Routes(r)
	return r
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(server.RequestIDHeader, "req_test1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const chatBody = `{
	"model": "gpt-4o",
	"temperature": 1.7,
	"frequency_penalty": 0.5,
	"messages": [
		{"role": "system", "content": "be brief"},
		{"role": "user", "content": "hello"}
	]
}`

func TestDecode(t *testing.T) {
	router := newTestRouter(t, Options{})

	rec := do(t, router, http.MethodPost, "/v1/openai/decode", chatBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	out := decodeBody(t, rec)
	assert.Equal(t, "openai", out["protocol"])
	assert.NotContains(t, out, "provider")
	assert.NotContains(t, out, "adjustments")

	req := out["request"].(map[string]any)
	assert.Equal(t, "gpt-4o", req["model"])
	assert.Equal(t, 1.7, req["temperature"])
	assert.Len(t, req["messages"], 2)
}

func TestDecodeWithProvider(t *testing.T) {
	router := newTestRouter(t, Options{})

	rec := do(t, router, http.MethodPost, "/v1/chat.completions/decode?provider=anthropic&target=anthropic", chatBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decodeBody(t, rec)
	assert.Equal(t, "anthropic", out["provider"])

	req := out["request"].(map[string]any)
	assert.Equal(t, 1.0, req["temperature"])
	assert.NotContains(t, req, "frequency_penalty")
	assert.Equal(t, 4096.0, req["max_tokens"])

	var params []string
	for _, adj := range out["adjustments"].([]any) {
		params = append(params, adj.(map[string]any)["param"].(string))
	}
	assert.Equal(t, []string{"frequency_penalty", "temperature", "max_tokens"}, params)

	assert.Equal(t, "anthropic", out["target"])
	body := out["body"].(map[string]any)
	assert.Equal(t, 4096.0, body["max_tokens"])
	assert.Contains(t, body, "system")
}

func TestDecodeDefaultProvider(t *testing.T) {
	router := newTestRouter(t, Options{DefaultProvider: "anthropic"})

	rec := do(t, router, http.MethodPost, "/v1/openai/decode", chatBody)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "anthropic", out["provider"])
	assert.NotEmpty(t, out["adjustments"])
}

func TestDecodeErrors(t *testing.T) {
	router := newTestRouter(t, Options{})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		check  func(t *testing.T, out map[string]any)
	}{
		{
			name:   "unknown protocol",
			path:   "/v1/gemini/decode",
			body:   chatBody,
			status: http.StatusNotFound,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "unknown_protocol", out["error"].(map[string]any)["code"])
			},
		},
		{
			name:   "unknown provider",
			path:   "/v1/openai/decode?provider=nope",
			body:   chatBody,
			status: http.StatusBadRequest,
			check: func(t *testing.T, out map[string]any) {
				e := out["error"].(map[string]any)
				assert.Equal(t, "unknown_provider", e["code"])
				assert.Equal(t, "provider", e["param"])
			},
		},
		{
			name:   "anthropic envelope",
			path:   "/v1/anthropic/decode",
			body:   `{"model":"claude","max_tokens":10,"messages":[]}`,
			status: http.StatusBadRequest,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "error", out["type"])
				assert.Equal(t, "invalid_request_error", out["error"].(map[string]any)["type"])
			},
		},
		{
			name:   "message shape",
			path:   "/v1/openai/decode",
			body:   `{"model":"gpt-4o","messages":[{"role":"wizard","content":"hi"}]}`,
			status: http.StatusBadRequest,
			check: func(t *testing.T, out map[string]any) {
				e := out["error"].(map[string]any)
				assert.Equal(t, "decode_failed", e["code"])
				assert.Equal(t, "messages[0].role", e["param"])
			},
		},
		{
			name:   "bad target",
			path:   "/v1/openai/decode?target=gemini",
			body:   chatBody,
			status: http.StatusBadRequest,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "target", out["error"].(map[string]any)["param"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			tt.check(t, decodeBody(t, rec))
		})
	}
}

const responseBody = `{
	"id": "resp_upstream",
	"native_id": "msg_abc",
	"model": "claude-sonnet-4-5",
	"choices": [{
		"index": 0,
		"message": {"role": "assistant", "content": [{"type": "text", "text": "hi there"}]},
		"finish_reason": "stop"
	}],
	"usage": {"input_tokens": 10, "output_tokens": 5, "total_tokens": 15}
}`

func TestEncode(t *testing.T) {
	router := newTestRouter(t, Options{})

	t.Run("openai", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/openai/encode", responseBody)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		out := decodeBody(t, rec)
		assert.Equal(t, "req_test1", out["id"])
		assert.Equal(t, "chat.completion", out["object"])
		assert.Equal(t, 1700000000.0, out["created"])
		choice := out["choices"].([]any)[0].(map[string]any)
		assert.Equal(t, "hi there", choice["message"].(map[string]any)["content"])
		assert.Equal(t, "stop", choice["finish_reason"])
	})

	t.Run("anthropic", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/anthropic/encode", responseBody)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		out := decodeBody(t, rec)
		assert.Equal(t, "req_test1", out["id"])
		assert.Equal(t, "message", out["type"])
		assert.Equal(t, "end_turn", out["stop_reason"])
	})

	t.Run("invalid body", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/responses/encode", `{"choices": 3}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

const eventsBody = `[
	{"type": "start"},
	{"type": "delta_text", "text": "Hel"},
	{"type": "delta_text", "text": "lo"},
	{"type": "stop", "finish_reason": "stop"}
]`

func TestStream(t *testing.T) {
	router := newTestRouter(t, Options{})

	t.Run("openai", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/openai/stream", eventsBody)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

		body := rec.Body.String()
		assert.NotContains(t, body, "event:")
		assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"), body)
		assert.Equal(t, 5, strings.Count(body, "data: "))
		assert.Contains(t, body, `"req_test1"`)
	})

	t.Run("anthropic", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/anthropic/stream", eventsBody)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "event: message_start\n"), body)
		assert.NotContains(t, body, "[DONE]")
	})

	t.Run("bad events", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/anthropic/stream", `[{"type":"teleport"}]`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "error", decodeBody(t, rec)["type"])
	})
}

func TestCountTokens(t *testing.T) {
	router := newTestRouter(t, Options{})

	rec := do(t, router, http.MethodPost, "/v1/openai/count_tokens", chatBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody(t, rec)
	assert.Greater(t, out["input_tokens"].(float64), 0.0)
	assert.NotContains(t, out, "estimated")

	rec = do(t, router, http.MethodPost, "/v1/anthropic/count_tokens",
		`{"model":"claude-sonnet-4-5","max_tokens":10,"messages":[{"role":"user","content":"hello there"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeBody(t, rec)["estimated"])
}

func TestProviders(t *testing.T) {
	router := newTestRouter(t, Options{})

	rec := do(t, router, http.MethodGet, "/v1/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "list", out["object"])
	data := out["data"].([]any)
	require.NotEmpty(t, data)
	var ids []string
	for _, p := range data {
		ids = append(ids, p.(map[string]any)["id"].(string))
	}
	assert.Contains(t, ids, "anthropic")
	assert.IsIncreasing(t, ids)

	rec = do(t, router, http.MethodGet, "/v1/providers/anthropic", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeBody(t, rec)
	assert.Equal(t, "anthropic", p["id"])
	assert.Contains(t, p["capabilities"], "image.generate")
	assert.Equal(t, 1.0, p["max_temperature"])

	rec = do(t, router, http.MethodGet, "/v1/providers/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCapability(t *testing.T) {
	router := newTestRouter(t, Options{})

	rec := do(t, router, http.MethodGet, "/v1/providers/anthropic/capabilities/text.generate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "anthropic", out["provider"])
	assert.Equal(t, "text.generate", out["capability"])
	assert.Equal(t, true, out["supported"])

	rec = do(t, router, http.MethodGet, "/v1/providers/anthropic/capabilities/images.generations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image.generate", decodeBody(t, rec)["capability"])

	rec = do(t, router, http.MethodGet, "/v1/providers/nope/capabilities/ocr", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, Options{})
	rec := do(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestBodyLimit(t *testing.T) {
	router := newTestRouter(t, Options{})
	rec := do(t, router, http.MethodPost, "/v1/openai/decode", strings.Repeat("x", MaxBodyBytes+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
