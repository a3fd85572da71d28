package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteSSE(&buf, &Frame{Event: "message_start", Data: map[string]string{"type": "message_start"}}))
	require.NoError(t, WriteSSE(&buf, &Frame{Data: json.RawMessage(`{"object":"chat.completion.chunk"}`)}))
	require.NoError(t, WriteDone(&buf))

	assert.Equal(t,
		"event: message_start\ndata: {\"type\":\"message_start\"}\n\n"+
			"data: {\"object\":\"chat.completion.chunk\"}\n\n"+
			"data: [DONE]\n\n",
		buf.String())
}

func TestWriteSSE_MarshalError(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSSE(&buf, &Frame{Event: "bad", Data: make(chan int)})
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestEncodeContextIDs(t *testing.T) {
	resp := &domain.ChatResponse{ID: "req_1", NativeID: "chatcmpl-9", Model: "m", Created: 10}

	ctx := EncodeContext{}
	assert.Equal(t, "req_1", ctx.PrimaryID(resp))
	assert.Equal(t, "chatcmpl-9", ctx.NativeID(resp))
	assert.Equal(t, "m", ctx.ModelFor(resp))
	assert.Equal(t, int64(10), ctx.CreatedFor(resp))

	ctx = EncodeContext{RequestID: "req_2", Model: "alias", Created: 20}
	assert.Equal(t, "req_2", ctx.PrimaryID(resp))
	assert.Equal(t, "alias", ctx.ModelFor(resp))
	assert.Equal(t, int64(20), ctx.CreatedFor(resp))

	same := &domain.ChatResponse{ID: "x", NativeID: "req_2"}
	assert.Empty(t, ctx.NativeID(same))
}

func TestStreamErrorMessage(t *testing.T) {
	assert.Equal(t, "stream_error", StreamErrorMessage(domain.ErrorEvent{}))
	assert.Equal(t, "boom", StreamErrorMessage(domain.ErrorEvent{Message: "boom"}))
}

func TestWriteError_OpenAIEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, &domain.DecodeError{
		Protocol:     domain.APITypeOpenAI,
		MessageIndex: 2,
		Field:        "content",
		Expected:     "string, array or null",
	}, domain.APITypeResponses)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Param   string `json:"param"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_request_error", body.Error.Type)
	assert.Equal(t, "messages[2].content", body.Error.Param)
	assert.Equal(t, "decode_failed", body.Error.Code)
	assert.Contains(t, body.Error.Message, "message 2")
}

func TestWriteError_AnthropicEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		wantType string
	}{
		{"capability denied", &domain.CapabilityDeniedError{Provider: "ai21", Capability: domain.CapabilityImageGenerate}, http.StatusForbidden, "permission_error"},
		{"not found", domain.ErrNotFound("no such provider"), http.StatusNotFound, "not_found_error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "api_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err, domain.APITypeAnthropic)

			assert.Equal(t, tt.status, rec.Code)
			var body struct {
				Type  string `json:"type"`
				Error struct {
					Type    string `json:"type"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Type)
			assert.Equal(t, tt.wantType, body.Error.Type)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestWriteError_AnthropicFoldsParam(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, domain.ErrInvalidRequest("unknown provider \"x\"").WithParam("provider"), domain.APITypeAnthropic)

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, `provider: unknown provider "x"`, body.Error.Message)
}

func TestWriteError_OpenAIServerError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("boom"), domain.APITypeResponses)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"server_error"`)
}
