package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestFinishReason_Table(t *testing.T) {
	tests := []struct {
		reason    FinishReason
		openai    string
		anthropic *string
	}{
		{FinishStop, "stop", strPtr("end_turn")},
		{FinishLength, "length", strPtr("max_tokens")},
		{FinishToolCalls, "tool_calls", strPtr("tool_use")},
		{FinishContentFilter, "content_filter", strPtr("refusal")},
		{FinishError, "error", nil},
		{"", "stop", strPtr("end_turn")},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			assert.Equal(t, tt.openai, tt.reason.ToOpenAI())
			assert.Equal(t, tt.anthropic, tt.reason.ToAnthropic())
		})
	}
}

func TestMapStopToAnthropic(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want *string
	}{
		{"nil", nil, nil},
		{"stop", strPtr("stop"), strPtr("end_turn")},
		{"uppercase", strPtr("TOOL_CALLS"), strPtr("tool_use")},
		{"native value", strPtr("end_turn"), strPtr("end_turn")},
		{"native stop_sequence", strPtr("stop_sequence"), strPtr("stop_sequence")},
		{"error", strPtr("error"), nil},
		{"unknown passes through", strPtr("Weird_Reason"), strPtr("Weird_Reason")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapStopToAnthropic(tt.in))
		})
	}
}

func TestParseFinishReason(t *testing.T) {
	assert.Equal(t, FinishStop, ParseFinishReason("end_turn"))
	assert.Equal(t, FinishLength, ParseFinishReason("MAX_TOKENS"))
	assert.Equal(t, FinishToolCalls, ParseFinishReason("tool_use"))
	assert.Equal(t, FinishContentFilter, ParseFinishReason("refusal"))
	assert.Equal(t, FinishError, ParseFinishReason("failed"))
	assert.Equal(t, FinishStop, ParseFinishReason("something-new"))
}
