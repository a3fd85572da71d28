package responses

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tjfontaine/polyglot-translate/internal/api/openai"
	"github.com/tjfontaine/polyglot-translate/internal/api/responses"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	chatcodec "github.com/tjfontaine/polyglot-translate/internal/codec/openai"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

const protocol = domain.APITypeResponses

// DecodeRequest converts a Responses request to canonical form. Message
// indexes in errors refer to the input array.
//
// Bodies without input that carry a Chat Completions messages array are
// decoded as chat requests.
func DecodeRequest(apiReq *responses.Request) (*domain.ChatRequest, error) {
	if apiReq.Input.Invalid != "" {
		return nil, codec.RequestError(protocol, "input", "string or array of input items, got "+apiReq.Input.Invalid)
	}
	if apiReq.Input.Text == nil && apiReq.Input.Items == nil && len(apiReq.Messages) > 0 {
		return decodeChatFallback(apiReq)
	}

	req := &domain.ChatRequest{
		Model:             apiReq.Model,
		Stream:            apiReq.Stream,
		MaxTokens:         codec.FirstInt(apiReq.MaxOutputTokens, apiReq.MaxTokens),
		Temperature:       apiReq.Temperature,
		TopP:              apiReq.TopP,
		TopK:              apiReq.TopK,
		Seed:              apiReq.Seed,
		FrequencyPenalty:  apiReq.FrequencyPenalty,
		PresencePenalty:   apiReq.PresencePenalty,
		Stop:              codec.Strings(apiReq.Stop),
		LogitBias:         codec.IntMap(apiReq.LogitBias),
		Logprobs:          apiReq.Logprobs,
		TopLogprobs:       codec.FirstInt(apiReq.TopLogprobs),
		ParallelToolCalls: apiReq.ParallelToolCalls,
		MaxToolCalls:      codec.FirstInt(apiReq.MaxToolCalls, apiReq.MaxToolsCalls),
		ServiceTier:       codec.ServiceTier(apiReq.Speed, apiReq.ServiceTier),
		User:              apiReq.User,
		Metadata:          codec.StringMap(apiReq.Metadata),
		Routing:           chatcodec.DecodeRouting(apiReq.Provider),
	}

	var messages []domain.Message
	if apiReq.Instructions != "" {
		messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: domain.Text(apiReq.Instructions)})
	}
	switch {
	case apiReq.Input.Text != nil:
		messages = append(messages, domain.Message{Role: domain.RoleUser, Content: domain.Text(*apiReq.Input.Text)})
	case apiReq.Input.Items != nil:
		decoded, err := decodeItems(apiReq.Input.Items)
		if err != nil {
			return nil, err
		}
		messages = append(messages, decoded...)
	}
	if len(messages) == 0 {
		return nil, codec.RequestError(protocol, "input", "non-empty string or array of input items")
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

	req.Reasoning = decodeReasoning(apiReq.Reasoning)
	req.ResponseFormat = decodeFormat(apiReq)

	return req, nil
}

// itemDecoder folds input items into messages. Bare input parts collect
// into one user message; reasoning items collect until the next assistant
// turn absorbs them.
type itemDecoder struct {
	messages  []domain.Message
	userParts []domain.ContentPart
	reasoning []domain.ContentPart
}

func (d *itemDecoder) flushUser() {
	if len(d.userParts) > 0 {
		d.messages = append(d.messages, domain.Message{Role: domain.RoleUser, Content: d.userParts})
		d.userParts = nil
	}
}

func (d *itemDecoder) flushReasoning() {
	if len(d.reasoning) > 0 {
		d.messages = append(d.messages, domain.Message{Role: domain.RoleAssistant, Content: d.reasoning})
		d.reasoning = nil
	}
}

// takeReasoning returns the pending reasoning prepended to content.
func (d *itemDecoder) takeReasoning(content []domain.ContentPart) []domain.ContentPart {
	if len(d.reasoning) == 0 {
		return content
	}
	out := append(d.reasoning, content...)
	d.reasoning = nil
	return out
}

func decodeItems(items []responses.InputItem) ([]domain.Message, error) {
	d := &itemDecoder{}
	for i, item := range items {
		if ferr := d.decodeItem(item); ferr != nil {
			return nil, ferr.At(protocol, i)
		}
	}
	d.flushUser()
	d.flushReasoning()
	return d.messages, nil
}

func (d *itemDecoder) decodeItem(item responses.InputItem) *codec.FieldError {
	switch {
	case item.Type == "input_text" || item.Type == "input_image" || item.Type == "input_audio":
		part, ferr := decodeBarePart(item)
		if ferr != nil {
			return ferr
		}
		d.flushReasoning()
		d.userParts = append(d.userParts, part)
		return nil

	case item.Type == "message" || (item.Type == "" && item.Role != ""):
		d.flushUser()
		return d.decodeMessage(item)

	case item.Type == "function_call":
		d.flushUser()
		if item.CallID == "" {
			return codec.Fieldf("call_id", "non-empty string")
		}
		if item.Name == "" {
			return codec.Fieldf("name", "non-empty string")
		}
		call := domain.ToolCall{ID: item.CallID, Name: item.Name, Arguments: item.Arguments}
		if call.Arguments == "" {
			call.Arguments = "{}"
		}
		if len(d.reasoning) == 0 && len(d.messages) > 0 && d.messages[len(d.messages)-1].Role == domain.RoleAssistant {
			last := &d.messages[len(d.messages)-1]
			last.ToolCalls = append(last.ToolCalls, call)
			return nil
		}
		d.messages = append(d.messages, domain.Message{
			Role:      domain.RoleAssistant,
			Content:   d.takeReasoning([]domain.ContentPart{}),
			ToolCalls: []domain.ToolCall{call},
		})
		return nil

	case item.Type == "function_call_output":
		d.flushUser()
		d.flushReasoning()
		if item.CallID == "" {
			return codec.Fieldf("call_id", "non-empty string")
		}
		d.messages = append(d.messages, domain.Message{
			Role:        domain.RoleTool,
			Content:     []domain.ContentPart{},
			ToolResults: []domain.ToolResult{{ToolCallID: item.CallID, Content: outputString(item.Output)}},
		})
		return nil

	case item.Type == "reasoning":
		d.flushUser()
		text, ferr := reasoningText(item)
		if ferr != nil {
			return ferr
		}
		d.reasoning = append(d.reasoning, domain.ReasoningPart{Text: text})
		return nil

	default:
		return codec.Fieldf("type", "message, input_text, input_image, input_audio, function_call, function_call_output or reasoning, got %q", item.Type)
	}
}

func (d *itemDecoder) decodeMessage(item responses.InputItem) *codec.FieldError {
	switch item.Role {
	case "user", "system", "developer":
		d.flushReasoning()
		content, ferr := DecodeContent(item.Content)
		if ferr != nil {
			return ferr
		}
		role := domain.Role(item.Role)
		if item.Role == "developer" {
			role = domain.RoleSystem
		}
		d.messages = append(d.messages, domain.Message{Role: role, Content: content})
		return nil

	case "assistant":
		content := domain.Text("")
		if item.Content != nil {
			var ferr *codec.FieldError
			if content, ferr = DecodeContent(item.Content); ferr != nil {
				return ferr
			}
		}
		msg := domain.Message{Role: domain.RoleAssistant, Content: d.takeReasoning(content)}
		for j, tc := range item.ToolCalls {
			if tc.Type != "" && tc.Type != "function" {
				return codec.Fieldf(fmt.Sprintf("tool_calls[%d].type", j), "\"function\", got %q", tc.Type)
			}
			args := tc.Function.Arguments
			if args == "" {
				args = "{}"
			}
			msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
		}
		d.messages = append(d.messages, msg)
		return nil

	case "tool":
		d.flushReasoning()
		if item.ToolCallID == "" {
			return codec.Fieldf("tool_call_id", "non-empty string")
		}
		var text string
		if item.Content != nil {
			if item.Content.Text != nil {
				text = *item.Content.Text
			} else {
				b, err := json.Marshal(item.Content)
				if err != nil {
					return codec.Fieldf("content", "string or array of content parts: %v", err)
				}
				text = string(b)
			}
		}
		d.messages = append(d.messages, domain.Message{
			Role:        domain.RoleTool,
			Content:     []domain.ContentPart{},
			ToolResults: []domain.ToolResult{{ToolCallID: item.ToolCallID, Content: text}},
		})
		return nil

	default:
		return codec.Fieldf("role", "one of system, developer, user, assistant, tool, got %q", item.Role)
	}
}

// DecodeContent converts message item content. Absent content decodes to an
// empty slice.
func DecodeContent(c *responses.Content) ([]domain.ContentPart, *codec.FieldError) {
	switch {
	case c == nil || (c.Text == nil && c.Parts == nil && c.Invalid == ""):
		return []domain.ContentPart{}, nil
	case c.Invalid != "":
		return nil, codec.Fieldf("content", "string or array of content parts, got %s", c.Invalid)
	case c.Text != nil:
		return domain.Text(*c.Text), nil
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

func decodePart(p responses.ContentPart) (domain.ContentPart, *codec.FieldError) {
	switch p.Type {
	case "input_text", "output_text", "text":
		if p.Text == nil {
			return nil, codec.Fieldf("text", "string")
		}
		return domain.TextPart{Text: *p.Text}, nil
	case "input_image", "image_url":
		return decodeImage(p.ImageURL, p.Detail)
	case "input_audio":
		return decodeAudio(p.InputAudio)
	default:
		return nil, codec.Fieldf("type", "input_text, output_text, input_image or input_audio, got %q", p.Type)
	}
}

func decodeBarePart(item responses.InputItem) (domain.ContentPart, *codec.FieldError) {
	switch item.Type {
	case "input_text":
		if item.Text == nil {
			return nil, codec.Fieldf("text", "string")
		}
		return domain.TextPart{Text: *item.Text}, nil
	case "input_image":
		return decodeImage(item.ImageURL, item.Detail)
	default:
		return decodeAudio(item.InputAudio)
	}
}

func decodeImage(u *responses.ImageURL, detail string) (domain.ContentPart, *codec.FieldError) {
	if u == nil || u.URL == "" {
		return nil, codec.Fieldf("image_url", "non-empty URL or data URI")
	}
	if detail == "" {
		detail = u.Detail
	}
	return codec.ImageFromURL(u.URL, detail), nil
}

func decodeAudio(a *openai.InputAudio) (domain.ContentPart, *codec.FieldError) {
	if a == nil || a.Data == "" {
		return nil, codec.Fieldf("input_audio", "object with base64 data")
	}
	return domain.AudioPart{Source: domain.SourceData, Data: a.Data, Format: a.Format}, nil
}

func reasoningText(item responses.InputItem) (string, *codec.FieldError) {
	var text string
	if item.Content != nil {
		if item.Content.Invalid != "" {
			return "", codec.Fieldf("content", "string or array of reasoning parts, got %s", item.Content.Invalid)
		}
		if item.Content.Text != nil {
			return *item.Content.Text, nil
		}
		for _, p := range item.Content.Parts {
			if p.Text != nil {
				text += *p.Text
			}
		}
		if len(item.Content.Parts) > 0 {
			return text, nil
		}
	}
	for _, p := range item.Summary {
		if p.Text != nil {
			text += *p.Text
		}
	}
	return text, nil
}

// outputString renders function_call_output.output: strings verbatim, null
// as "", anything else as its JSON text.
func outputString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return codec.CompactJSON(raw)
}

func decodeTools(in []responses.Tool) ([]domain.Tool, error) {
	if len(in) == 0 {
		return nil, nil
	}
	tools := make([]domain.Tool, 0, len(in))
	for i, t := range in {
		if t.Type != "" && t.Type != "function" {
			return nil, codec.RequestError(protocol, fmt.Sprintf("tools[%d].type", i), fmt.Sprintf("\"function\", got %q", t.Type))
		}
		tool := domain.Tool{Name: t.Name, Description: t.Description, Parameters: t.Parameters}
		if f := t.Function; f != nil {
			if tool.Name == "" {
				tool.Name = f.Name
			}
			if tool.Description == "" {
				tool.Description = f.Description
			}
			if len(tool.Parameters) == 0 {
				tool.Parameters = f.Parameters
			}
		}
		if tool.Name == "" {
			return nil, codec.RequestError(protocol, fmt.Sprintf("tools[%d].name", i), "non-empty string")
		}
		if len(tool.Parameters) == 0 {
			tool.Parameters = json.RawMessage("{}")
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

// decodeFormat reads response_format, falling back to text.format.
func decodeFormat(apiReq *responses.Request) *domain.ResponseFormat {
	f := apiReq.ResponseFormat
	if f == nil && apiReq.Text != nil {
		f = apiReq.Text.Format
	}
	if f == nil {
		return nil
	}
	switch f.Type {
	case "json_object", "json":
		return &domain.ResponseFormat{Type: "json_object", Schema: f.Schema}
	case "json_schema":
		out := &domain.ResponseFormat{Type: "json_schema", Name: f.Name, Schema: f.Schema, Strict: f.Strict}
		if js := f.JSONSchema; js != nil {
			if out.Name == "" {
				out.Name = js.Name
			}
			if len(out.Schema) == 0 {
				out.Schema = js.Schema
			}
			if out.Strict == nil {
				out.Strict = js.Strict
			}
		}
		return out
	default:
		return &domain.ResponseFormat{Type: "text"}
	}
}

func decodeChatFallback(apiReq *responses.Request) (*domain.ChatRequest, error) {
	chat := &openai.ChatCompletionRequest{
		Model:             apiReq.Model,
		Messages:          apiReq.Messages,
		MaxOutputTokens:   apiReq.MaxOutputTokens,
		MaxTokens:         apiReq.MaxTokens,
		Temperature:       apiReq.Temperature,
		TopP:              apiReq.TopP,
		TopK:              apiReq.TopK,
		Seed:              apiReq.Seed,
		FrequencyPenalty:  apiReq.FrequencyPenalty,
		PresencePenalty:   apiReq.PresencePenalty,
		Stop:              apiReq.Stop,
		LogitBias:         apiReq.LogitBias,
		Logprobs:          apiReq.Logprobs,
		TopLogprobs:       apiReq.TopLogprobs,
		ParallelToolCalls: apiReq.ParallelToolCalls,
		MaxToolCalls:      codec.FirstInt(apiReq.MaxToolCalls, apiReq.MaxToolsCalls),
		Provider:          apiReq.Provider,
		Stream:            apiReq.Stream,
		ServiceTier:       apiReq.ServiceTier,
		Speed:             apiReq.Speed,
		User:              apiReq.User,
		Metadata:          apiReq.Metadata,
	}
	if apiReq.Instructions != "" {
		system := openai.TextContent(apiReq.Instructions)
		chat.System = &system
	}
	req, err := chatcodec.DecodeRequest(chat)
	if err != nil {
		var de *domain.DecodeError
		if errors.As(err, &de) {
			de.Protocol = protocol
		}
		return nil, err
	}

	// Tools, tool choice and reasoning keep their Responses shapes.
	if req.Tools, err = decodeTools(apiReq.Tools); err != nil {
		return nil, err
	}
	if apiReq.ToolChoice != nil {
		req.ToolChoice = codec.ToolChoice(apiReq.ToolChoice.Mode, apiReq.ToolChoice.Name)
	}
	req.Reasoning = decodeReasoning(apiReq.Reasoning)
	req.ResponseFormat = decodeFormat(apiReq)
	return req, nil
}

// decodeReasoning defaults the effort to medium when a reasoning object is
// present without one.
func decodeReasoning(r *responses.Reasoning) *domain.Reasoning {
	if r == nil {
		return nil
	}
	effort := codec.ParseEffort(r.Effort)
	if effort == "" {
		effort = domain.EffortMedium
	}
	return &domain.Reasoning{Effort: effort, Summary: r.Summary, Enabled: r.Enabled, MaxTokens: r.MaxTokens}
}
