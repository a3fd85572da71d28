package translate

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
	"github.com/tjfontaine/polyglot-translate/internal/provider/textnorm"
)

func TestCodecDispatch(t *testing.T) {
	tr := New(nil)
	for _, api := range domain.APITypes() {
		c, err := tr.Codec(api)
		require.NoError(t, err)
		assert.Equal(t, api, c.Name())
	}

	_, err := tr.Codec("gemini")
	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, domain.ErrorTypeNotFound, apiErr.Type)
}

func TestTranslateChatToAnthropic(t *testing.T) {
	tr := New(nil)
	res, err := tr.Translate(domain.APITypeOpenAI, domain.APITypeAnthropic, []byte(`{
		"model": "claude-sonnet-4-5",
		"temperature": 1.7,
		"frequency_penalty": 0.5,
		"reasoning_effort": "xhigh",
		"messages": [
			{"role": "developer", "content": "be brief"},
			{"role": "user", "content": "hi"}
		]
	}`), "anthropic")
	require.NoError(t, err)

	assert.Equal(t, []textnorm.Adjustment{
		{Param: "frequency_penalty", Action: textnorm.ActionDropped},
		{Param: "temperature", Action: textnorm.ActionClamped, From: "1.7", To: "1"},
		{Param: "max_tokens", Action: textnorm.ActionDefaulted, To: "4096"},
		{Param: "reasoning.effort", Action: textnorm.ActionFallback, From: "xhigh", To: "high"},
	}, res.Adjustments)

	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body, &body))
	assert.Equal(t, float64(4096), body["max_tokens"])
	assert.Equal(t, float64(1), body["temperature"])
	assert.Equal(t, map[string]any{"effort": "high"}, body["output_config"])
	assert.Equal(t, []any{map[string]any{"type": "text", "text": "be brief"}}, body["system"])
	assert.Len(t, body["messages"], 1)
}

func TestTranslateKeepsSamplingExtras(t *testing.T) {
	tr := New(nil)
	res, err := tr.Translate(domain.APITypeOpenAI, domain.APITypeOpenAI, []byte(`{
		"model": "gpt-4o",
		"messages": [{"role": "user", "content": "hi"}],
		"n": 2,
		"logit_bias": {"50256": -100},
		"logprobs": true,
		"top_logprobs": 3,
		"stream_options": {"include_usage": true},
		"max_tool_calls": 4,
		"provider": {"order": ["openai", "azure"], "ignore": ["groq"]}
	}`), "")
	require.NoError(t, err)
	assert.Empty(t, res.Adjustments)

	assert.JSONEq(t, `{
		"model": "gpt-4o",
		"messages": [{"role": "user", "content": "hi"}],
		"n": 2,
		"logit_bias": {"50256": -100},
		"logprobs": true,
		"top_logprobs": 3,
		"stream_options": {"include_usage": true},
		"max_tool_calls": 4,
		"provider": {"order": ["openai", "azure"], "ignore": ["groq"]}
	}`, string(res.Body))
}

func TestTranslateResponsesToChatExtras(t *testing.T) {
	tr := New(nil)
	res, err := tr.Translate(domain.APITypeResponses, domain.APITypeOpenAI, []byte(`{
		"model": "gpt-4.1",
		"input": "hi",
		"max_tools_calls": 2,
		"top_logprobs": 1,
		"provider": {"only": ["openai"]}
	}`), "")
	require.NoError(t, err)

	require.NotNil(t, res.Request.MaxToolCalls)
	assert.Equal(t, 2, *res.Request.MaxToolCalls)
	assert.Equal(t, &domain.RoutingHints{Only: []string{"openai"}}, res.Request.Routing)

	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body, &body))
	assert.Equal(t, float64(2), body["max_tool_calls"])
	assert.Equal(t, float64(1), body["top_logprobs"])
	assert.Equal(t, map[string]any{"only": []any{"openai"}}, body["provider"])
}

func TestTranslateDropsUnsupportedExtras(t *testing.T) {
	tr := New(nil)
	res, err := tr.Translate(domain.APITypeOpenAI, domain.APITypeOpenAI, []byte(`{
		"model": "llama-3.3-70b",
		"messages": [{"role": "user", "content": "hi"}],
		"logit_bias": {"1": 5},
		"logprobs": true,
		"top_logprobs": 2
	}`), "groq")
	require.NoError(t, err)

	assert.Equal(t, []textnorm.Adjustment{
		{Param: "logit_bias", Action: textnorm.ActionDropped},
		{Param: "logprobs", Action: textnorm.ActionDropped},
		{Param: "top_logprobs", Action: textnorm.ActionDropped},
	}, res.Adjustments)

	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body, &body))
	assert.NotContains(t, body, "logit_bias")
	assert.NotContains(t, body, "logprobs")
	assert.NotContains(t, body, "top_logprobs")
}

func TestTranslateDecodeError(t *testing.T) {
	_, err := New(nil).Translate(domain.APITypeAnthropic, domain.APITypeOpenAI, []byte(`{"model":"m","messages":[]}`), "")
	var de *domain.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.APITypeAnthropic, de.Protocol)
}

func TestPrepareWithoutProvider(t *testing.T) {
	tr := New(nil)
	temp := 9.0
	req := &domain.ChatRequest{Model: "m", Temperature: &temp}

	out, adj := tr.Prepare(req, "")
	assert.Same(t, req, out)
	assert.Empty(t, adj)

	out, adj = tr.Prepare(req, "no-such-provider")
	assert.Empty(t, adj)
	assert.Equal(t, 9.0, *out.Temperature)
}

// parityResponse renders the same text, usage and finish reason in every
// protocol.
func parityResponse(finish domain.FinishReason) *domain.ChatResponse {
	return &domain.ChatResponse{
		ID:       "req_parity",
		NativeID: "up_1",
		Created:  1700000000,
		Model:    "m",
		Choices: []domain.Choice{{
			Message:      domain.Message{Role: domain.RoleAssistant, Content: domain.Text("Hello, world")},
			FinishReason: finish,
		}},
		Usage: &domain.Usage{InputTokens: 10, OutputTokens: 5},
	}
}

func TestCrossProtocolParity(t *testing.T) {
	tests := []struct {
		finish    domain.FinishReason
		openai    any
		anthropic any
		status    string
	}{
		{domain.FinishStop, "stop", "end_turn", "completed"},
		{domain.FinishLength, "length", "max_tokens", "incomplete"},
		{domain.FinishToolCalls, "tool_calls", "tool_use", "completed"},
		{domain.FinishError, "error", nil, "failed"},
		{domain.FinishContentFilter, "content_filter", "refusal", "completed"},
	}

	tr := New(nil)
	for _, tt := range tests {
		t.Run(string(tt.finish), func(t *testing.T) {
			resp := parityResponse(tt.finish)
			render := func(api domain.APIType) map[string]any {
				data, err := tr.EncodeResponse(api, resp, codec.EncodeContext{})
				require.NoError(t, err)
				var out map[string]any
				require.NoError(t, json.Unmarshal(data, &out))
				assert.Equal(t, "req_parity", out["id"])
				assert.Equal(t, "up_1", out["nativeResponseId"])
				return out
			}

			chat := render(domain.APITypeOpenAI)
			choice := chat["choices"].([]any)[0].(map[string]any)
			assert.Equal(t, "Hello, world", choice["message"].(map[string]any)["content"])
			assert.Equal(t, tt.openai, choice["finish_reason"])
			usage := chat["usage"].(map[string]any)
			assert.Equal(t, []any{float64(10), float64(5), float64(15)}, []any{usage["prompt_tokens"], usage["completion_tokens"], usage["total_tokens"]})

			resp2 := render(domain.APITypeResponses)
			msg := resp2["output"].([]any)[0].(map[string]any)
			assert.Equal(t, "Hello, world", msg["content"].([]any)[0].(map[string]any)["text"])
			assert.Equal(t, tt.status, resp2["status"])
			usage = resp2["usage"].(map[string]any)
			assert.Equal(t, []any{float64(10), float64(5), float64(15)}, []any{usage["input_tokens"], usage["output_tokens"], usage["total_tokens"]})

			msgs := render(domain.APITypeAnthropic)
			assert.Equal(t, "Hello, world", msgs["content"].([]any)[0].(map[string]any)["text"])
			assert.Equal(t, tt.anthropic, msgs["stop_reason"])
			usage = msgs["usage"].(map[string]any)
			assert.Equal(t, []any{float64(10), float64(5)}, []any{usage["input_tokens"], usage["output_tokens"]})
		})
	}
}

func TestEncodeStream(t *testing.T) {
	events := []domain.StreamEvent{
		domain.StartEvent{},
		domain.TextDeltaEvent{Channel: domain.ChannelOutputText, Text: "Hi"},
		domain.StopEvent{FinishReason: domain.FinishStop},
	}
	ctx := codec.StreamContext{RequestID: "req_s", Model: "m", Created: 1}
	tr := New(nil)

	var buf bytes.Buffer
	require.NoError(t, tr.EncodeStream(&buf, domain.APITypeOpenAI, events, ctx))
	frames := strings.Split(strings.TrimSuffix(buf.String(), "\n\n"), "\n\n")
	require.Len(t, frames, 4)
	assert.Equal(t, "data: [DONE]", frames[3])
	assert.NotContains(t, buf.String(), "event:")

	buf.Reset()
	require.NoError(t, tr.EncodeStream(&buf, domain.APITypeAnthropic, events, ctx))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "event: message_start\ndata: "))
	assert.Contains(t, out, "event: content_block_delta\n")
	assert.Contains(t, out, `"stop_reason":"end_turn"`)
	assert.NotContains(t, out, "[DONE]")

	buf.Reset()
	require.NoError(t, tr.EncodeStream(&buf, domain.APITypeResponses, events, ctx))
	assert.Equal(t, 3, strings.Count(buf.String(), "event: "))
	assert.Contains(t, buf.String(), "event: response.output_text.delta\n")
}

func TestDescribeProvider(t *testing.T) {
	tr := New(nil)

	view, ok := tr.DescribeProvider("ANTHROPIC", "claude-sonnet-4-5")
	require.True(t, ok)
	assert.Equal(t, "anthropic", view.ID)
	assert.Equal(t, "claude-sonnet-4-5", view.Model)
	assert.Len(t, view.Capabilities, len(domain.AdapterBackedCapabilities()))
	assert.False(t, view.Capabilities[string(domain.CapabilityMusicGenerate)])

	_, ok = tr.DescribeProvider("nope", "")
	assert.False(t, ok)
}
