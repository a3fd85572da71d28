package domain

import (
	"encoding/json"
	"fmt"
)

// StreamEventType identifies a canonical stream event.
type StreamEventType string

const (
	EventTypeStart     StreamEventType = "start"
	EventTypeTextDelta StreamEventType = "delta_text"
	EventTypeToolDelta StreamEventType = "delta_tool"
	EventTypeUsage     StreamEventType = "usage"
	EventTypeStop      StreamEventType = "stop"
	EventTypeError     StreamEventType = "error"
	EventTypeSnapshot  StreamEventType = "snapshot"
)

// Channel separates visible output from reasoning in text deltas.
type Channel string

const (
	ChannelOutputText    Channel = "output_text"
	ChannelReasoningText Channel = "reasoning_text"
)

// StreamEvent is one entry of a single response's ordered event sequence:
// at most one StartEvent, then deltas, then at most one StopEvent or
// ErrorEvent. UsageEvent may appear anywhere, including after the stop.
//
// The set of implementations is closed.
type StreamEvent interface {
	EventType() StreamEventType
	streamEvent()
}

// StartEvent announces a new response.
type StartEvent struct{}

// TextDeltaEvent appends text to a choice.
type TextDeltaEvent struct {
	Channel     Channel
	Text        string
	ChoiceIndex int
}

// ToolDeltaEvent carries tool-call progress. When ArgumentsDelta is set it is
// an incremental fragment; otherwise Arguments holds the complete string.
type ToolDeltaEvent struct {
	ToolCallID     string
	ToolName       string
	ChoiceIndex    int
	ToolIndex      int
	ArgumentsDelta *string
	Arguments      string
}

// UsageEvent reports token usage.
type UsageEvent struct {
	Usage Usage
}

// StopEvent terminates the response.
type StopEvent struct {
	FinishReason FinishReason
}

// ErrorEvent terminates the response with a failure.
type ErrorEvent struct {
	Message string
}

// SnapshotEvent passes an already protocol-shaped payload through verbatim.
type SnapshotEvent struct {
	Payload json.RawMessage
}

func (StartEvent) EventType() StreamEventType     { return EventTypeStart }
func (TextDeltaEvent) EventType() StreamEventType { return EventTypeTextDelta }
func (ToolDeltaEvent) EventType() StreamEventType { return EventTypeToolDelta }
func (UsageEvent) EventType() StreamEventType     { return EventTypeUsage }
func (StopEvent) EventType() StreamEventType      { return EventTypeStop }
func (ErrorEvent) EventType() StreamEventType     { return EventTypeError }
func (SnapshotEvent) EventType() StreamEventType  { return EventTypeSnapshot }

func (StartEvent) streamEvent()     {}
func (TextDeltaEvent) streamEvent() {}
func (ToolDeltaEvent) streamEvent() {}
func (UsageEvent) streamEvent()     {}
func (StopEvent) streamEvent()      {}
func (ErrorEvent) streamEvent()     {}
func (SnapshotEvent) streamEvent()  {}

// streamEventJSON is the flat JSON form used by the HTTP and CLI surfaces.
type streamEventJSON struct {
	Type           StreamEventType `json:"type"`
	Channel        Channel         `json:"channel,omitempty"`
	Text           string          `json:"text,omitempty"`
	ChoiceIndex    int             `json:"choice_index,omitempty"`
	ToolCallID     string          `json:"tool_call_id,omitempty"`
	ToolName       string          `json:"tool_name,omitempty"`
	ToolIndex      int             `json:"tool_index,omitempty"`
	ArgumentsDelta *string         `json:"arguments_delta,omitempty"`
	Arguments      string          `json:"arguments,omitempty"`
	Usage          *Usage          `json:"usage,omitempty"`
	FinishReason   FinishReason    `json:"finish_reason,omitempty"`
	Message        string          `json:"message,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

// MarshalStreamEvent encodes an event in its flat JSON form.
func MarshalStreamEvent(ev StreamEvent) ([]byte, error) {
	wire := streamEventJSON{Type: ev.EventType()}
	switch e := ev.(type) {
	case StartEvent:
	case TextDeltaEvent:
		wire.Channel, wire.Text, wire.ChoiceIndex = e.Channel, e.Text, e.ChoiceIndex
	case ToolDeltaEvent:
		wire.ToolCallID, wire.ToolName = e.ToolCallID, e.ToolName
		wire.ChoiceIndex, wire.ToolIndex = e.ChoiceIndex, e.ToolIndex
		wire.ArgumentsDelta, wire.Arguments = e.ArgumentsDelta, e.Arguments
	case UsageEvent:
		u := e.Usage
		wire.Usage = &u
	case StopEvent:
		wire.FinishReason = e.FinishReason
	case ErrorEvent:
		wire.Message = e.Message
	case SnapshotEvent:
		wire.Payload = e.Payload
	default:
		return nil, fmt.Errorf("unsupported stream event %T", ev)
	}
	return json.Marshal(wire)
}

// UnmarshalStreamEvent decodes one event from its flat JSON form.
func UnmarshalStreamEvent(data []byte) (StreamEvent, error) {
	var wire streamEventJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	switch wire.Type {
	case EventTypeStart:
		return StartEvent{}, nil
	case EventTypeTextDelta:
		channel := wire.Channel
		if channel == "" {
			channel = ChannelOutputText
		}
		if channel != ChannelOutputText && channel != ChannelReasoningText {
			return nil, fmt.Errorf("unknown text channel %q", channel)
		}
		return TextDeltaEvent{Channel: channel, Text: wire.Text, ChoiceIndex: wire.ChoiceIndex}, nil
	case EventTypeToolDelta:
		return ToolDeltaEvent{
			ToolCallID:     wire.ToolCallID,
			ToolName:       wire.ToolName,
			ChoiceIndex:    wire.ChoiceIndex,
			ToolIndex:      wire.ToolIndex,
			ArgumentsDelta: wire.ArgumentsDelta,
			Arguments:      wire.Arguments,
		}, nil
	case EventTypeUsage:
		if wire.Usage == nil {
			return nil, fmt.Errorf("usage event without usage")
		}
		return UsageEvent{Usage: *wire.Usage}, nil
	case EventTypeStop:
		return StopEvent{FinishReason: wire.FinishReason}, nil
	case EventTypeError:
		return ErrorEvent{Message: wire.Message}, nil
	case EventTypeSnapshot:
		return SnapshotEvent{Payload: wire.Payload}, nil
	default:
		return nil, fmt.Errorf("unknown stream event type %q", wire.Type)
	}
}

// UnmarshalStreamEvents decodes a JSON array of events, preserving order.
func UnmarshalStreamEvents(data []byte) ([]StreamEvent, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	events := make([]StreamEvent, 0, len(raw))
	for i, r := range raw {
		ev, err := UnmarshalStreamEvent(r)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}
