package domain

import "strings"

// FinishReason is the canonical reason generation ended.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishContentFilter FinishReason = "content_filter"
	FinishError         FinishReason = "error"
)

// finishReasonTable is the one mapping every encoder consults. An empty
// Anthropic value means the protocol has no stop_reason for it.
var finishReasonTable = map[FinishReason]struct {
	openai    string
	anthropic string
}{
	FinishStop:          {openai: "stop", anthropic: "end_turn"},
	FinishLength:        {openai: "length", anthropic: "max_tokens"},
	FinishToolCalls:     {openai: "tool_calls", anthropic: "tool_use"},
	FinishContentFilter: {openai: "content_filter", anthropic: "refusal"},
	FinishError:         {openai: "error", anthropic: ""},
}

// OrDefault returns FinishStop for an unset reason.
func (f FinishReason) OrDefault() FinishReason {
	if f == "" {
		return FinishStop
	}
	return f
}

// ToOpenAI renders the reason for OpenAI Chat and Responses. Unknown values
// pass through unchanged.
func (f FinishReason) ToOpenAI() string {
	f = f.OrDefault()
	if row, ok := finishReasonTable[f]; ok {
		return row.openai
	}
	return string(f)
}

// ToAnthropic renders the reason as an Anthropic stop_reason. It returns nil
// for FinishError.
func (f FinishReason) ToAnthropic() *string {
	s := string(f.OrDefault())
	return MapStopToAnthropic(&s)
}

// MapStopToAnthropic maps a canonical or provider-native stop string to an
// Anthropic stop_reason. Matching is case-insensitive; "error" maps to nil
// and unrecognized values pass through unchanged.
func MapStopToAnthropic(reason *string) *string {
	if reason == nil {
		return nil
	}
	lower := strings.ToLower(*reason)
	switch lower {
	case "end_turn", "max_tokens", "tool_use", "refusal", "stop_sequence", "pause_turn":
		return &lower
	}
	if row, ok := finishReasonTable[FinishReason(lower)]; ok {
		if row.anthropic == "" {
			return nil
		}
		out := row.anthropic
		return &out
	}
	out := *reason
	return &out
}

// ParseFinishReason normalizes a provider-native finish or stop reason into
// the canonical set. Unrecognized values map to FinishStop.
func ParseFinishReason(s string) FinishReason {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stop", "end_turn", "stop_sequence", "completed", "eos", "pause_turn":
		return FinishStop
	case "length", "max_tokens", "max_output_tokens", "incomplete":
		return FinishLength
	case "tool_calls", "tool_use", "function_call":
		return FinishToolCalls
	case "content_filter", "refusal", "safety", "recitation":
		return FinishContentFilter
	case "error", "failed":
		return FinishError
	default:
		return FinishStop
	}
}
