package anthropic

import (
	"fmt"

	"github.com/tjfontaine/polyglot-translate/internal/api/anthropic"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

const protocol = domain.APITypeAnthropic

// DecodeRequest converts an Anthropic Messages request to canonical form.
// Message indexes in errors refer to apiReq.Messages.
//
// A user message carrying tool_result blocks decodes to a tool message
// holding every result, followed by a user message for any other blocks.
func DecodeRequest(apiReq *anthropic.MessagesRequest) (*domain.ChatRequest, error) {
	if len(apiReq.Messages) == 0 {
		return nil, codec.RequestError(protocol, "messages", "non-empty array of messages")
	}

	req := &domain.ChatRequest{
		Model:       apiReq.Model,
		Stream:      apiReq.Stream,
		MaxTokens:   codec.FirstInt(apiReq.MaxTokens, apiReq.MaxOutputTokens),
		Temperature: apiReq.Temperature,
		TopP:        apiReq.TopP,
		TopK:        apiReq.TopK,
		Stop:        codec.Strings(apiReq.StopSequences),
		ServiceTier: codec.ServiceTier(apiReq.Speed, apiReq.ServiceTier),
	}
	if apiReq.Metadata != nil {
		req.User = apiReq.Metadata.UserID
	}

	messages := make([]domain.Message, 0, len(apiReq.Messages)+1)
	if apiReq.System != nil {
		system, ferr := decodeSystem(*apiReq.System)
		if ferr != nil {
			return nil, codec.RequestError(protocol, "system", ferr.Expected)
		}
		if len(system) > 0 {
			messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: system})
		}
	}
	for i, m := range apiReq.Messages {
		decoded, ferr := DecodeMessage(m)
		if ferr != nil {
			return nil, ferr.At(protocol, i)
		}
		messages = append(messages, decoded...)
	}
	req.Messages = messages

	tools, err := decodeTools(apiReq.Tools)
	if err != nil {
		return nil, err
	}
	req.Tools = tools

	if tc := apiReq.ToolChoice; tc != nil {
		req.ToolChoice = codec.ToolChoice(tc.Type, tc.Name)
		if tc.DisableParallelToolUse != nil {
			parallel := !*tc.DisableParallelToolUse
			req.ParallelToolCalls = &parallel
		}
	}

	req.Reasoning = decodeReasoning(apiReq.Thinking, apiReq.OutputConfig)
	return req, nil
}

// DecodeMessage converts one Anthropic message. A user message may expand
// into a tool message and a user message.
func DecodeMessage(m anthropic.Message) ([]domain.Message, *codec.FieldError) {
	switch {
	case m.Content.Invalid != "":
		return nil, codec.Fieldf("content", "string or array of content blocks, got %s", m.Content.Invalid)
	case m.Content.Blocks == nil:
		return nil, codec.Fieldf("content", "string or array of content blocks")
	}

	switch m.Role {
	case "user":
		return decodeUser(m.Content.Blocks)
	case "assistant":
		msg, ferr := decodeAssistant(m.Content.Blocks)
		if ferr != nil {
			return nil, ferr
		}
		return []domain.Message{msg}, nil
	default:
		return nil, codec.Fieldf("role", "user or assistant, got %q", m.Role)
	}
}

// decodeUser splits a user turn into a tool message carrying its
// tool_result blocks followed by a user message with the remaining blocks.
// The tool message must directly follow the assistant turn that made the
// calls.
func decodeUser(blocks []anthropic.ContentBlock) ([]domain.Message, *codec.FieldError) {
	content := []domain.ContentPart{}
	var results []domain.ToolResult
	for j, b := range blocks {
		if b.Type == anthropic.BlockToolResult {
			if b.ToolUseID == "" {
				return nil, codec.Fieldf(fmt.Sprintf("content[%d].tool_use_id", j), "non-empty string")
			}
			result := domain.ToolResult{ToolCallID: b.ToolUseID}
			if b.Content != nil {
				result.Content = b.Content.String()
			}
			results = append(results, result)
			continue
		}
		part, ferr := decodeBlock(b)
		if ferr != nil {
			return nil, ferr.Prefixed(fmt.Sprintf("content[%d]", j))
		}
		content = append(content, part)
	}

	var out []domain.Message
	if len(results) > 0 {
		out = append(out, domain.Message{Role: domain.RoleTool, Content: []domain.ContentPart{}, ToolResults: results})
	}
	if len(content) > 0 || len(results) == 0 {
		out = append(out, domain.Message{Role: domain.RoleUser, Content: content})
	}
	return out, nil
}

func decodeAssistant(blocks []anthropic.ContentBlock) (domain.Message, *codec.FieldError) {
	msg := domain.Message{Role: domain.RoleAssistant, Content: []domain.ContentPart{}}
	for j, b := range blocks {
		switch b.Type {
		case anthropic.BlockToolUse:
			if b.ID == "" || b.Name == "" {
				return domain.Message{}, codec.Fieldf(fmt.Sprintf("content[%d]", j), "tool_use block with id and name")
			}
			msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{ID: b.ID, Name: b.Name, Arguments: codec.CompactJSON(b.Input)})
		case anthropic.BlockThinking:
			msg.Content = append(msg.Content, domain.ReasoningPart{Text: b.Thinking, Signature: b.Signature})
		default:
			part, ferr := decodeBlock(b)
			if ferr != nil {
				return domain.Message{}, ferr.Prefixed(fmt.Sprintf("content[%d]", j))
			}
			msg.Content = append(msg.Content, part)
		}
	}
	return msg, nil
}

// decodeBlock converts a text or image block.
func decodeBlock(b anthropic.ContentBlock) (domain.ContentPart, *codec.FieldError) {
	switch b.Type {
	case anthropic.BlockText:
		return domain.TextPart{Text: b.Text}, nil
	case anthropic.BlockImage:
		src := b.Source
		if src == nil {
			return nil, codec.Fieldf("source", "image source object")
		}
		switch src.Type {
		case "base64":
			return domain.ImagePart{Source: domain.SourceData, Data: src.Data, MimeType: codec.NormalizeMediaType(src.MediaType)}, nil
		case "url":
			mediaType := codec.NormalizeMediaType(src.MediaType)
			if mediaType == "" {
				mediaType = codec.InferMediaType(src.URL)
			}
			return domain.ImagePart{Source: domain.SourceURL, Data: src.URL, MimeType: mediaType}, nil
		default:
			return nil, codec.Fieldf("source.type", "base64 or url, got %q", src.Type)
		}
	default:
		return nil, codec.Fieldf("type", "text, image, tool_use, tool_result or thinking, got %q", b.Type)
	}
}

func decodeSystem(c anthropic.Content) ([]domain.ContentPart, *codec.FieldError) {
	if c.Invalid != "" {
		return nil, codec.Fieldf("system", "string or array of text blocks, got %s", c.Invalid)
	}
	parts := make([]domain.ContentPart, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		part, ferr := decodeBlock(b)
		if ferr != nil {
			return nil, ferr
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func decodeTools(in []anthropic.Tool) ([]domain.Tool, error) {
	if len(in) == 0 {
		return nil, nil
	}
	tools := make([]domain.Tool, 0, len(in))
	for i, t := range in {
		if t.Name == "" {
			return nil, codec.RequestError(protocol, fmt.Sprintf("tools[%d].name", i), "non-empty string")
		}
		tool := domain.Tool{Name: t.Name, Description: t.Description, Parameters: t.InputSchema}
		if len(tool.Parameters) == 0 {
			tool.Parameters = []byte("{}")
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

// decodeReasoning reads effort from output_config, then thinking.
func decodeReasoning(thinking *anthropic.ThinkingConfig, output *anthropic.OutputConfig) *domain.Reasoning {
	var effort string
	if output != nil {
		effort = output.Effort
	}
	if effort == "" && thinking != nil {
		effort = thinking.Effort
	}
	if effort == "" && thinking == nil {
		return nil
	}

	out := &domain.Reasoning{Effort: codec.ParseEffort(effort)}
	if thinking != nil {
		enabled := thinking.Type == "enabled"
		out.Enabled = &enabled
		out.MaxTokens = codec.FirstInt(thinking.BudgetTokens)
	}
	return out
}
