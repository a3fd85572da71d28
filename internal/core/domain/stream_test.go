package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalStreamEvents(t *testing.T) {
	events, err := UnmarshalStreamEvents([]byte(`[
		{"type": "start"},
		{"type": "delta_text", "text": "hel", "choice_index": 1},
		{"type": "delta_text", "channel": "reasoning_text", "text": "hmm"},
		{"type": "delta_tool", "tool_call_id": "call_1", "tool_name": "f", "arguments_delta": "{\"q\""},
		{"type": "delta_tool", "tool_call_id": "call_1", "tool_name": "f", "arguments": "{\"q\":1}"},
		{"type": "stop", "finish_reason": "tool_calls"},
		{"type": "usage", "usage": {"input_tokens": 2, "output_tokens": 3, "total_tokens": 5}},
		{"type": "error", "message": "boom"},
		{"type": "snapshot", "payload": {"raw": true}}
	]`))
	require.NoError(t, err)
	require.Len(t, events, 9)

	assert.Equal(t, StartEvent{}, events[0])
	assert.Equal(t, TextDeltaEvent{Channel: ChannelOutputText, Text: "hel", ChoiceIndex: 1}, events[1])
	assert.Equal(t, ChannelReasoningText, events[2].(TextDeltaEvent).Channel)

	delta := events[3].(ToolDeltaEvent)
	require.NotNil(t, delta.ArgumentsDelta)
	assert.Equal(t, `{"q"`, *delta.ArgumentsDelta)
	assert.Nil(t, events[4].(ToolDeltaEvent).ArgumentsDelta)
	assert.Equal(t, `{"q":1}`, events[4].(ToolDeltaEvent).Arguments)

	assert.Equal(t, StopEvent{FinishReason: FinishToolCalls}, events[5])
	assert.Equal(t, 5, events[6].(UsageEvent).Usage.TotalTokens)
	assert.Equal(t, ErrorEvent{Message: "boom"}, events[7])
	assert.JSONEq(t, `{"raw":true}`, string(events[8].(SnapshotEvent).Payload))
}

func TestUnmarshalStreamEvent_Errors(t *testing.T) {
	_, err := UnmarshalStreamEvent([]byte(`{"type":"heartbeat"}`))
	assert.ErrorContains(t, err, "heartbeat")

	_, err = UnmarshalStreamEvent([]byte(`{"type":"usage"}`))
	assert.Error(t, err)

	_, err = UnmarshalStreamEvent([]byte(`{"type":"delta_text","channel":"audio"}`))
	assert.Error(t, err)

	_, err = UnmarshalStreamEvents([]byte(`[{"type":"start"},{"type":"nope"}]`))
	assert.ErrorContains(t, err, "event 1")
}

func TestMarshalStreamEvent(t *testing.T) {
	delta := `{"a"`
	data, err := MarshalStreamEvent(ToolDeltaEvent{ToolCallID: "c", ToolName: "f", ToolIndex: 2, ArgumentsDelta: &delta})
	require.NoError(t, err)

	back, err := UnmarshalStreamEvent(data)
	require.NoError(t, err)
	assert.Equal(t, ToolDeltaEvent{ToolCallID: "c", ToolName: "f", ToolIndex: 2, ArgumentsDelta: &delta}, back)

	data, err = MarshalStreamEvent(StopEvent{FinishReason: FinishLength})
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "length", wire["finish_reason"])
}
