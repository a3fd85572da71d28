package openai

import (
	"github.com/tjfontaine/polyglot-translate/internal/api/openai"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

const chunkObject = "chat.completion.chunk"

// EncodeStreamEvent translates one canonical event into a chat completion
// chunk. Chat streams carry no SSE event names.
func EncodeStreamEvent(ev domain.StreamEvent, ctx codec.StreamContext) *codec.Frame {
	switch e := ev.(type) {
	case domain.SnapshotEvent:
		return &codec.Frame{Data: codec.Snapshot(e.Payload)}

	case domain.ErrorEvent:
		return &codec.Frame{Data: openai.StreamError{Object: "error", Message: codec.StreamErrorMessage(e)}}

	case domain.StartEvent:
		return &codec.Frame{Data: chunk(ctx)}

	case domain.UsageEvent:
		c := chunk(ctx)
		c.Usage = EncodeUsage(&e.Usage)
		return &codec.Frame{Data: c}

	case domain.TextDeltaEvent:
		text := e.Text
		var delta openai.ChunkDelta
		if e.Channel == domain.ChannelReasoningText {
			delta.ReasoningContent = &text
		} else {
			delta.Content = &text
		}
		c := chunk(ctx)
		c.Choices = []openai.ChunkChoice{{Index: e.ChoiceIndex, Delta: delta}}
		return &codec.Frame{Data: c}

	case domain.ToolDeltaEvent:
		args := e.Arguments
		if e.ArgumentsDelta != nil {
			args = *e.ArgumentsDelta
		}
		c := chunk(ctx)
		c.Choices = []openai.ChunkChoice{{
			Index: e.ChoiceIndex,
			Delta: openai.ChunkDelta{
				ToolCalls: []openai.ToolCallChunk{{
					Index:    e.ToolIndex,
					ID:       e.ToolCallID,
					Type:     "function",
					Function: openai.FunctionCallChunk{Name: e.ToolName, Arguments: args},
				}},
			},
		}}
		return &codec.Frame{Data: c}

	case domain.StopEvent:
		reason := e.FinishReason.ToOpenAI()
		c := chunk(ctx)
		c.Choices = []openai.ChunkChoice{{Index: 0, FinishReason: &reason}}
		return &codec.Frame{Data: c}
	}
	return nil
}

func chunk(ctx codec.StreamContext) *openai.ChatCompletionChunk {
	return &openai.ChatCompletionChunk{
		ID:      ctx.RequestID,
		Object:  chunkObject,
		Created: ctx.Created,
		Model:   ctx.Model,
		Choices: []openai.ChunkChoice{},
	}
}
