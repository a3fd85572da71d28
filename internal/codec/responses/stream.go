package responses

import (
	"github.com/tjfontaine/polyglot-translate/internal/api/responses"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// Stream event names.
const (
	EventCreated            = "response.created"
	EventCompleted          = "response.completed"
	EventOutputTextDelta    = "response.output_text.delta"
	EventReasoningTextDelta = "response.reasoning_text.delta"
	EventArgumentsDelta     = "response.function_call_arguments.delta"
	EventArgumentsDone      = "response.function_call_arguments.done"
	EventError              = "error"
)

// EncodeStreamEvent translates one canonical event into a named Responses
// stream frame. Every payload repeats the event name in its type field.
func EncodeStreamEvent(ev domain.StreamEvent, ctx codec.StreamContext) *codec.Frame {
	switch e := ev.(type) {
	case domain.SnapshotEvent:
		return &codec.Frame{Data: codec.Snapshot(e.Payload)}

	case domain.ErrorEvent:
		return &codec.Frame{Event: EventError, Data: responses.ErrorEvent{
			Type:  EventError,
			Error: responses.ErrorDetail{Message: codec.StreamErrorMessage(e)},
		}}

	case domain.StartEvent:
		return responseFrame(EventCreated, envelope(ctx, StatusInProgress))

	case domain.TextDeltaEvent:
		name := EventOutputTextDelta
		if e.Channel == domain.ChannelReasoningText {
			name = EventReasoningTextDelta
		}
		return &codec.Frame{Event: name, Data: responses.TextDeltaEvent{
			Type:        name,
			OutputIndex: e.ChoiceIndex,
			Delta:       e.Text,
		}}

	case domain.ToolDeltaEvent:
		payload := responses.FunctionCallArgumentsEvent{
			ItemID:      e.ToolCallID,
			Name:        e.ToolName,
			OutputIndex: e.ChoiceIndex,
		}
		if e.ArgumentsDelta != nil {
			delta := *e.ArgumentsDelta
			payload.Type, payload.Delta = EventArgumentsDelta, &delta
		} else {
			args := e.Arguments
			payload.Type, payload.Arguments = EventArgumentsDone, &args
		}
		return &codec.Frame{Event: payload.Type, Data: payload}

	case domain.UsageEvent:
		resp := envelope(ctx, StatusCompleted)
		resp.Usage = EncodeUsage(&e.Usage)
		return responseFrame(EventCompleted, resp)

	case domain.StopEvent:
		status := StatusCompleted
		if e.FinishReason == domain.FinishError {
			status = StatusFailed
		}
		return responseFrame(EventCompleted, envelope(ctx, status))
	}
	return nil
}

func envelope(ctx codec.StreamContext, status string) responses.Response {
	return responses.Response{
		ID:      ctx.RequestID,
		Object:  "response",
		Created: ctx.Created,
		Model:   ctx.Model,
		Status:  status,
	}
}

func responseFrame(name string, resp responses.Response) *codec.Frame {
	return &codec.Frame{Event: name, Data: responses.ResponseEvent{Type: name, Response: resp}}
}
