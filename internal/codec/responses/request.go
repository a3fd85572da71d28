package responses

import (
	"encoding/json"

	"github.com/tjfontaine/polyglot-translate/internal/api/openai"
	"github.com/tjfontaine/polyglot-translate/internal/api/responses"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	chatcodec "github.com/tjfontaine/polyglot-translate/internal/codec/openai"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// EncodeRequest renders a canonical request as a Responses request. A
// leading plain-text system message becomes instructions; tool calls and
// tool results become function_call and function_call_output items.
func EncodeRequest(req *domain.ChatRequest) *responses.Request {
	out := &responses.Request{
		Model:             req.Model,
		Stream:            req.Stream,
		MaxOutputTokens:   codec.FirstInt(req.MaxTokens),
		Temperature:       req.Temperature,
		TopP:              req.TopP,
		TopK:              req.TopK,
		Seed:              req.Seed,
		FrequencyPenalty:  req.FrequencyPenalty,
		PresencePenalty:   req.PresencePenalty,
		Stop:              codec.Strings(req.Stop),
		LogitBias:         codec.IntMap(req.LogitBias),
		Logprobs:          req.Logprobs,
		TopLogprobs:       codec.FirstInt(req.TopLogprobs),
		ParallelToolCalls: req.ParallelToolCalls,
		MaxToolCalls:      codec.FirstInt(req.MaxToolCalls),
		ServiceTier:       req.ServiceTier,
		User:              req.User,
		Metadata:          codec.StringMap(req.Metadata),
		Provider:          chatcodec.EncodeRouting(req.Routing),
	}

	messages := req.Messages
	if len(messages) > 0 && messages[0].Role == domain.RoleSystem && len(messages[0].Content) == 1 {
		if p, ok := messages[0].Content[0].(domain.TextPart); ok && p.Text != "" {
			out.Instructions = p.Text
			messages = messages[1:]
		}
	}

	items := []responses.InputItem{}
	for _, m := range messages {
		items = append(items, encodeItems(m)...)
	}
	out.Input = responses.Input{Items: items}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, responses.Tool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	if req.ToolChoice != nil {
		out.ToolChoice = &responses.ToolChoice{Mode: string(req.ToolChoice.Mode), Name: req.ToolChoice.Name}
	}
	if r := req.Reasoning; r != nil {
		out.Reasoning = &responses.Reasoning{
			Effort:    string(r.Effort),
			Summary:   r.Summary,
			Enabled:   r.Enabled,
			MaxTokens: r.MaxTokens,
		}
	}
	if f := req.ResponseFormat; f != nil {
		out.Text = &responses.TextConfig{Format: &responses.Format{
			Type:   f.Type,
			Name:   f.Name,
			Schema: f.Schema,
			Strict: f.Strict,
		}}
	}
	return out
}

func encodeItems(m domain.Message) []responses.InputItem {
	switch m.Role {
	case domain.RoleTool:
		items := make([]responses.InputItem, 0, len(m.ToolResults))
		for _, r := range m.ToolResults {
			output, _ := json.Marshal(r.Content)
			items = append(items, responses.InputItem{
				Type:   "function_call_output",
				CallID: r.ToolCallID,
				Output: output,
			})
		}
		return items

	case domain.RoleAssistant:
		var items []responses.InputItem
		var visible []domain.ContentPart
		for _, part := range m.Content {
			if p, ok := part.(domain.ReasoningPart); ok {
				items = append(items, responses.InputItem{
					Type:    "reasoning",
					Summary: []responses.ContentPart{{Type: "summary_text", Text: &p.Text}},
				})
				continue
			}
			visible = append(visible, part)
		}
		if len(m.ToolCalls) == 0 || hasContent(visible) {
			items = append(items, responses.InputItem{
				Type:    "message",
				Role:    "assistant",
				Content: encodeContent(visible, "output_text"),
			})
		}
		for _, tc := range m.ToolCalls {
			items = append(items, responses.InputItem{
				Type:      "function_call",
				CallID:    tc.ID,
				Name:      tc.Name,
				Arguments: tc.Arguments,
			})
		}
		return items

	default:
		return []responses.InputItem{{
			Type:    "message",
			Role:    string(m.Role),
			Content: encodeContent(m.Content, "input_text"),
		}}
	}
}

// encodeContent renders text-only content as a string and anything else as
// typed parts.
func encodeContent(parts []domain.ContentPart, textType string) *responses.Content {
	textOnly := len(parts) <= 1
	for _, part := range parts {
		if _, ok := part.(domain.TextPart); !ok {
			textOnly = false
		}
	}
	if textOnly {
		var text string
		if len(parts) == 1 {
			text = parts[0].(domain.TextPart).Text
		}
		return responses.TextContent(text)
	}

	out := make([]responses.ContentPart, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case domain.TextPart:
			text := p.Text
			out = append(out, responses.ContentPart{Type: textType, Text: &text})
		case domain.ImagePart:
			out = append(out, responses.ContentPart{
				Type:     "input_image",
				ImageURL: &responses.ImageURL{URL: codec.ImageURL(p)},
				Detail:   p.Detail,
			})
		case domain.AudioPart:
			out = append(out, responses.ContentPart{
				Type:       "input_audio",
				InputAudio: &openai.InputAudio{Data: p.Data, Format: p.Format},
			})
		}
	}
	return &responses.Content{Parts: out}
}

func hasContent(parts []domain.ContentPart) bool {
	for _, part := range parts {
		if p, ok := part.(domain.TextPart); !ok || p.Text != "" {
			return true
		}
	}
	return false
}
