package anthropic

import (
	"github.com/tjfontaine/polyglot-translate/internal/api/anthropic"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// Stream event names.
const (
	EventMessageStart      = "message_start"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
	EventMessageDelta      = "message_delta"
	EventError             = "error"
)

// EncodeStreamEvent translates one canonical event into a named Anthropic
// stream frame. Block indexes follow the event's choice index.
func EncodeStreamEvent(ev domain.StreamEvent, ctx codec.StreamContext) *codec.Frame {
	switch e := ev.(type) {
	case domain.SnapshotEvent:
		return &codec.Frame{Data: codec.Snapshot(e.Payload)}

	case domain.ErrorEvent:
		return &codec.Frame{Event: EventError, Data: anthropic.ErrorResponse{
			Type:  "error",
			Error: anthropic.APIError{Message: codec.StreamErrorMessage(e)},
		}}

	case domain.StartEvent:
		return &codec.Frame{Event: EventMessageStart, Data: anthropic.MessageStartEvent{
			Type: EventMessageStart,
			Message: anthropic.MessageShell{
				ID:      ctx.RequestID,
				Type:    "message",
				Role:    "assistant",
				Model:   ctx.Model,
				Content: []anthropic.ContentBlock{},
			},
		}}

	case domain.TextDeltaEvent:
		text := e.Text
		delta := anthropic.BlockDelta{Type: "text_delta", Text: &text}
		if e.Channel == domain.ChannelReasoningText {
			delta = anthropic.BlockDelta{Type: "thinking_delta", Thinking: &text}
		}
		return &codec.Frame{Event: EventContentBlockDelta, Data: anthropic.ContentBlockDeltaEvent{
			Type:  EventContentBlockDelta,
			Index: e.ChoiceIndex,
			Delta: delta,
		}}

	case domain.ToolDeltaEvent:
		if e.ArgumentsDelta != nil {
			partial := *e.ArgumentsDelta
			return &codec.Frame{Event: EventContentBlockDelta, Data: anthropic.ContentBlockDeltaEvent{
				Type:  EventContentBlockDelta,
				Index: e.ChoiceIndex,
				Delta: anthropic.BlockDelta{Type: "input_json_delta", PartialJSON: &partial},
			}}
		}
		return &codec.Frame{Event: EventContentBlockStart, Data: anthropic.ContentBlockStartEvent{
			Type:  EventContentBlockStart,
			Index: e.ChoiceIndex,
			ContentBlock: anthropic.ContentBlock{
				Type:  anthropic.BlockToolUse,
				ID:    e.ToolCallID,
				Name:  e.ToolName,
				Input: codec.ToolInput(e.Arguments),
			},
		}}

	case domain.UsageEvent:
		return &codec.Frame{Event: EventMessageDelta, Data: anthropic.MessageDeltaEvent{
			Type:  EventMessageDelta,
			Usage: EncodeUsage(&e.Usage, ""),
		}}

	case domain.StopEvent:
		return &codec.Frame{Event: EventMessageDelta, Data: anthropic.MessageDeltaEvent{
			Type:  EventMessageDelta,
			Delta: &anthropic.MessageDelta{StopReason: e.FinishReason.ToAnthropic()},
		}}
	}
	return nil
}
