package openai

import (
	"encoding/json"
	"fmt"

	"github.com/tjfontaine/polyglot-translate/internal/api/openai"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

const protocol = domain.APITypeOpenAI

// DecodeRequest converts an OpenAI chat completion request to canonical
// form. Message indexes in errors refer to apiReq.Messages.
func DecodeRequest(apiReq *openai.ChatCompletionRequest) (*domain.ChatRequest, error) {
	if len(apiReq.Messages) == 0 {
		return nil, codec.RequestError(protocol, "messages", "non-empty array of messages")
	}

	req := &domain.ChatRequest{
		Model:             apiReq.Model,
		Stream:            apiReq.Stream,
		MaxTokens:         codec.FirstInt(apiReq.MaxCompletionTokens, apiReq.MaxTokens, apiReq.MaxOutputTokens),
		Temperature:       apiReq.Temperature,
		TopP:              apiReq.TopP,
		TopK:              apiReq.TopK,
		Seed:              apiReq.Seed,
		FrequencyPenalty:  apiReq.FrequencyPenalty,
		PresencePenalty:   apiReq.PresencePenalty,
		Stop:              codec.Strings(apiReq.Stop),
		N:                 codec.FirstInt(apiReq.N),
		LogitBias:         codec.IntMap(apiReq.LogitBias),
		Logprobs:          apiReq.Logprobs,
		TopLogprobs:       codec.FirstInt(apiReq.TopLogprobs),
		ParallelToolCalls: apiReq.ParallelToolCalls,
		MaxToolCalls:      codec.FirstInt(apiReq.MaxToolCalls),
		ServiceTier:       codec.ServiceTier(apiReq.Speed, apiReq.ServiceTier),
		User:              apiReq.User,
		Metadata:          codec.StringMap(apiReq.Metadata),
		Routing:           DecodeRouting(apiReq.Provider),
	}
	if apiReq.StreamOptions != nil {
		req.StreamOptions = &domain.StreamOptions{IncludeUsage: apiReq.StreamOptions.IncludeUsage}
	}

	messages := make([]domain.Message, 0, len(apiReq.Messages)+1)
	if apiReq.System != nil && !apiReq.System.IsNull() {
		content, ferr := DecodeContent(*apiReq.System)
		if ferr != nil {
			return nil, codec.RequestError(protocol, "system", ferr.Expected)
		}
		messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: content})
	}
	for i, m := range apiReq.Messages {
		msg, ferr := DecodeMessage(m)
		if ferr != nil {
			return nil, ferr.At(protocol, i)
		}
		messages = append(messages, msg)
	}
	req.Messages = messages

	tools, err := decodeTools(apiReq.Tools)
	if err != nil {
		return nil, err
	}
	req.Tools = tools

	if apiReq.ToolChoice != nil {
		req.ToolChoice = codec.ToolChoice(apiReq.ToolChoice.Mode, apiReq.ToolChoice.Name)
	}

	req.Reasoning = decodeReasoning(apiReq.Reasoning, apiReq.ReasoningEffort)
	req.ResponseFormat = decodeResponseFormat(apiReq.ResponseFormat)

	return req, nil
}

// DecodeMessage converts one chat message. "developer" folds into system.
func DecodeMessage(m openai.ChatCompletionMessage) (domain.Message, *codec.FieldError) {
	switch m.Role {
	case "system", "developer", "user":
		content, ferr := DecodeContent(m.Content)
		if ferr != nil {
			return domain.Message{}, ferr
		}
		role := domain.Role(m.Role)
		if m.Role == "developer" {
			role = domain.RoleSystem
		}
		return domain.Message{Role: role, Content: content}, nil

	case "assistant":
		content := []domain.ContentPart{domain.TextPart{}}
		if !m.Content.IsNull() {
			var ferr *codec.FieldError
			if content, ferr = DecodeContent(m.Content); ferr != nil {
				return domain.Message{}, ferr
			}
		}
		if m.ReasoningContent != "" {
			content = append([]domain.ContentPart{domain.ReasoningPart{Text: m.ReasoningContent}}, content...)
		}
		msg := domain.Message{Role: domain.RoleAssistant, Content: content}
		for j, tc := range m.ToolCalls {
			if tc.Type != "" && tc.Type != "function" {
				return domain.Message{}, codec.Fieldf(fmt.Sprintf("tool_calls[%d].type", j), "\"function\", got %q", tc.Type)
			}
			args := tc.Function.Arguments
			if args == "" {
				args = "{}"
			}
			msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
		}
		return msg, nil

	case "tool":
		if m.ToolCallID == "" {
			return domain.Message{}, codec.Fieldf("tool_call_id", "non-empty string")
		}
		// Non-string tool output is carried as its JSON text.
		return domain.Message{
			Role:        domain.RoleTool,
			Content:     []domain.ContentPart{},
			ToolResults: []domain.ToolResult{{ToolCallID: m.ToolCallID, Content: m.Content.String()}},
		}, nil

	default:
		return domain.Message{}, codec.Fieldf("role", "one of system, developer, user, assistant, tool, got %q", m.Role)
	}
}

// DecodeContent converts message content. Null decodes to an empty slice,
// a string to a single text part.
func DecodeContent(c openai.MessageContent) ([]domain.ContentPart, *codec.FieldError) {
	switch {
	case c.Invalid != "":
		return nil, codec.Fieldf("content", "string, array of content parts or null, got %s", c.Invalid)
	case c.Text != nil:
		return []domain.ContentPart{domain.TextPart{Text: *c.Text}}, nil
	case c.Parts == nil:
		return []domain.ContentPart{}, nil
	}

	parts := make([]domain.ContentPart, 0, len(c.Parts))
	for j, p := range c.Parts {
		part, ferr := decodePart(p)
		if ferr != nil {
			return nil, ferr.Prefixed(fmt.Sprintf("content[%d]", j))
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func decodePart(p openai.ContentPart) (domain.ContentPart, *codec.FieldError) {
	switch p.Type {
	case "text", "input_text", "output_text":
		if p.Text == nil {
			return nil, codec.Fieldf("text", "string")
		}
		return domain.TextPart{Text: *p.Text}, nil
	case "image_url", "input_image":
		if p.ImageURL == nil || p.ImageURL.URL == "" {
			return nil, codec.Fieldf("image_url", "object with a non-empty url")
		}
		return codec.ImageFromURL(p.ImageURL.URL, p.ImageURL.Detail), nil
	case "input_audio":
		if p.InputAudio == nil || p.InputAudio.Data == "" {
			return nil, codec.Fieldf("input_audio", "object with base64 data")
		}
		return domain.AudioPart{Source: domain.SourceData, Data: p.InputAudio.Data, Format: p.InputAudio.Format}, nil
	default:
		return nil, codec.Fieldf("type", "text, image_url or input_audio, got %q", p.Type)
	}
}

func decodeTools(in []openai.Tool) ([]domain.Tool, error) {
	if len(in) == 0 {
		return nil, nil
	}
	tools := make([]domain.Tool, 0, len(in))
	for i, t := range in {
		if t.Type != "" && t.Type != "function" {
			return nil, codec.RequestError(protocol, fmt.Sprintf("tools[%d].type", i), fmt.Sprintf("\"function\", got %q", t.Type))
		}
		if t.Function.Name == "" {
			return nil, codec.RequestError(protocol, fmt.Sprintf("tools[%d].function.name", i), "non-empty string")
		}
		params := t.Function.Parameters
		if len(params) == 0 {
			params = json.RawMessage("{}")
		}
		tools = append(tools, domain.Tool{Name: t.Function.Name, Description: t.Function.Description, Parameters: params})
	}
	return tools, nil
}

func decodeReasoning(r *openai.Reasoning, effort string) *domain.Reasoning {
	if r == nil && effort == "" {
		return nil
	}
	out := &domain.Reasoning{Effort: codec.ParseEffort(effort)}
	if r != nil {
		if r.Effort != "" {
			out.Effort = codec.ParseEffort(r.Effort)
		}
		out.Summary = r.Summary
		out.Enabled = r.Enabled
		out.MaxTokens = r.MaxTokens
	}
	return out
}

func decodeResponseFormat(f *openai.ResponseFormat) *domain.ResponseFormat {
	if f == nil {
		return nil
	}
	out := &domain.ResponseFormat{Type: f.Type}
	if f.JSONSchema != nil {
		out.Name = f.JSONSchema.Name
		out.Schema = f.JSONSchema.Schema
		out.Strict = f.JSONSchema.Strict
	}
	return out
}

// DecodeRouting converts a provider preferences object. Empty preferences
// decode to nil.
func DecodeRouting(p *openai.ProviderPreferences) *domain.RoutingHints {
	if p == nil || len(p.Order)+len(p.Only)+len(p.Ignore) == 0 {
		return nil
	}
	return &domain.RoutingHints{
		Order:  codec.Strings(p.Order),
		Only:   codec.Strings(p.Only),
		Ignore: codec.Strings(p.Ignore),
	}
}
