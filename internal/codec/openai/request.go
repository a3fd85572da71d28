package openai

import (
	"github.com/tjfontaine/polyglot-translate/internal/api/openai"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// EncodeRequest renders a canonical request as a chat completion request.
// Each tool result becomes its own tool message.
func EncodeRequest(req *domain.ChatRequest) *openai.ChatCompletionRequest {
	out := &openai.ChatCompletionRequest{
		Model:             req.Model,
		Stream:            req.Stream,
		MaxTokens:         codec.FirstInt(req.MaxTokens),
		Temperature:       req.Temperature,
		TopP:              req.TopP,
		TopK:              req.TopK,
		Seed:              req.Seed,
		FrequencyPenalty:  req.FrequencyPenalty,
		PresencePenalty:   req.PresencePenalty,
		Stop:              codec.Strings(req.Stop),
		N:                 codec.FirstInt(req.N),
		LogitBias:         codec.IntMap(req.LogitBias),
		Logprobs:          req.Logprobs,
		TopLogprobs:       codec.FirstInt(req.TopLogprobs),
		ParallelToolCalls: req.ParallelToolCalls,
		MaxToolCalls:      codec.FirstInt(req.MaxToolCalls),
		ServiceTier:       req.ServiceTier,
		User:              req.User,
		Metadata:          codec.StringMap(req.Metadata),
		Provider:          EncodeRouting(req.Routing),
	}
	switch {
	case req.StreamOptions != nil:
		out.StreamOptions = &openai.StreamOptions{IncludeUsage: req.StreamOptions.IncludeUsage}
	case req.Stream:
		out.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	}

	for _, m := range req.Messages {
		out.Messages = append(out.Messages, encodeMessages(m)...)
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, openai.Tool{
			Type: "function",
			Function: openai.FunctionTool{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	if req.ToolChoice != nil {
		out.ToolChoice = &openai.ToolChoice{Mode: string(req.ToolChoice.Mode), Name: req.ToolChoice.Name}
	}

	if r := req.Reasoning; r != nil {
		out.ReasoningEffort = string(r.Effort)
		if r.Summary != "" || r.Enabled != nil || r.MaxTokens != nil {
			out.Reasoning = &openai.Reasoning{
				Effort:    string(r.Effort),
				Summary:   r.Summary,
				Enabled:   r.Enabled,
				MaxTokens: r.MaxTokens,
			}
		}
	}

	if f := req.ResponseFormat; f != nil {
		out.ResponseFormat = &openai.ResponseFormat{Type: f.Type}
		if f.Type == "json_schema" {
			out.ResponseFormat.JSONSchema = &openai.JSONSchema{Name: f.Name, Schema: f.Schema, Strict: f.Strict}
		}
	}
	return out
}

func encodeMessages(m domain.Message) []openai.ChatCompletionMessage {
	if m.Role == domain.RoleTool {
		msgs := make([]openai.ChatCompletionMessage, 0, len(m.ToolResults))
		for _, r := range m.ToolResults {
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       "tool",
				Content:    openai.TextContent(r.Content),
				ToolCallID: r.ToolCallID,
			})
		}
		return msgs
	}

	msg := openai.ChatCompletionMessage{Role: string(m.Role)}
	var visible []domain.ContentPart
	for _, part := range m.Content {
		if p, ok := part.(domain.ReasoningPart); ok {
			msg.ReasoningContent += p.Text
			continue
		}
		visible = append(visible, part)
	}

	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
			ID:       tc.ID,
			Type:     "function",
			Function: openai.FunctionCall{Name: tc.Name, Arguments: tc.Arguments},
		})
	}

	if len(msg.ToolCalls) > 0 && isBlank(visible) {
		return []openai.ChatCompletionMessage{msg}
	}
	msg.Content = EncodeContent(visible)
	return []openai.ChatCompletionMessage{msg}
}

// EncodeContent renders content parts. Text-only content is rendered as a
// single string; anything else as an array of parts.
func EncodeContent(parts []domain.ContentPart) openai.MessageContent {
	textOnly := true
	for _, part := range parts {
		if _, ok := part.(domain.TextPart); !ok {
			textOnly = false
			break
		}
	}
	if textOnly {
		var text string
		for _, part := range parts {
			text += part.(domain.TextPart).Text
		}
		return openai.TextContent(text)
	}

	out := make([]openai.ContentPart, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case domain.TextPart:
			text := p.Text
			out = append(out, openai.ContentPart{Type: "text", Text: &text})
		case domain.ImagePart:
			out = append(out, openai.ContentPart{
				Type:     "image_url",
				ImageURL: &openai.ImageURL{URL: codec.ImageURL(p), Detail: p.Detail},
			})
		case domain.AudioPart:
			out = append(out, openai.ContentPart{
				Type:       "input_audio",
				InputAudio: &openai.InputAudio{Data: p.Data, Format: p.Format},
			})
		}
	}
	return openai.MessageContent{Parts: out}
}

// isBlank reports whether content carries nothing but empty text.
func isBlank(parts []domain.ContentPart) bool {
	for _, part := range parts {
		p, ok := part.(domain.TextPart)
		if !ok || p.Text != "" {
			return false
		}
	}
	return true
}

// EncodeRouting renders routing hints as a provider preferences object.
func EncodeRouting(h *domain.RoutingHints) *openai.ProviderPreferences {
	if h == nil {
		return nil
	}
	return &openai.ProviderPreferences{
		Order:  codec.Strings(h.Order),
		Only:   codec.Strings(h.Only),
		Ignore: codec.Strings(h.Ignore),
	}
}
