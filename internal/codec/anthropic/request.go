package anthropic

import (
	"encoding/json"

	"github.com/tjfontaine/polyglot-translate/internal/api/anthropic"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// EncodeRequest renders a canonical request as an Anthropic Messages
// request. System messages move to the system field, tool messages become
// user messages of tool_result blocks, and consecutive messages with the
// same wire role are merged so roles alternate.
func EncodeRequest(req *domain.ChatRequest) *anthropic.MessagesRequest {
	out := &anthropic.MessagesRequest{
		Model:         req.Model,
		Stream:        req.Stream,
		MaxTokens:     codec.FirstInt(req.MaxTokens),
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		TopK:          req.TopK,
		StopSequences: codec.Strings(req.Stop),
		ServiceTier:   req.ServiceTier,
	}
	if req.User != "" {
		out.Metadata = &anthropic.Metadata{UserID: req.User}
	}

	var system []anthropic.ContentBlock
	for _, m := range req.Messages {
		if m.Role == domain.RoleSystem {
			system = append(system, encodeParts(m.Content, false)...)
			continue
		}
		role, blocks := encodeMessage(m)
		if n := len(out.Messages); n > 0 && out.Messages[n-1].Role == role {
			prev := &out.Messages[n-1]
			prev.Content.Blocks = append(prev.Content.Blocks, blocks...)
			continue
		}
		out.Messages = append(out.Messages, anthropic.Message{Role: role, Content: anthropic.Content{Blocks: blocks}})
	}
	if len(system) > 0 {
		out.System = &anthropic.Content{Blocks: system}
	}

	for _, t := range req.Tools {
		schema := t.Parameters
		if len(schema) == 0 {
			schema = json.RawMessage("{}")
		}
		out.Tools = append(out.Tools, anthropic.Tool{Name: t.Name, Description: t.Description, InputSchema: schema})
	}

	out.ToolChoice = encodeToolChoice(req.ToolChoice, req.ParallelToolCalls)
	encodeReasoning(out, req.Reasoning)
	return out
}

func encodeMessage(m domain.Message) (string, []anthropic.ContentBlock) {
	switch m.Role {
	case domain.RoleTool:
		blocks := make([]anthropic.ContentBlock, 0, len(m.ToolResults))
		for _, r := range m.ToolResults {
			text := r.Content
			blocks = append(blocks, anthropic.ContentBlock{
				Type:      anthropic.BlockToolResult,
				ToolUseID: r.ToolCallID,
				Content:   &anthropic.ToolResultContent{Text: &text},
			})
		}
		return "user", blocks

	case domain.RoleAssistant:
		blocks := encodeParts(m.Content, len(m.ToolCalls) > 0)
		for _, tc := range m.ToolCalls {
			blocks = append(blocks, anthropic.ContentBlock{
				Type:  anthropic.BlockToolUse,
				ID:    tc.ID,
				Name:  tc.Name,
				Input: codec.ToolInput(tc.Arguments),
			})
		}
		return "assistant", blocks

	default:
		return "user", encodeParts(m.Content, false)
	}
}

// encodeParts renders content parts as blocks. Audio has no Anthropic block
// and is left out. Empty text is skipped when skipEmptyText is set.
func encodeParts(parts []domain.ContentPart, skipEmptyText bool) []anthropic.ContentBlock {
	blocks := make([]anthropic.ContentBlock, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case domain.TextPart:
			if p.Text == "" && skipEmptyText {
				continue
			}
			blocks = append(blocks, anthropic.ContentBlock{Type: anthropic.BlockText, Text: p.Text})
		case domain.ReasoningPart:
			blocks = append(blocks, anthropic.ContentBlock{Type: anthropic.BlockThinking, Thinking: p.Text, Signature: p.Signature})
		case domain.ImagePart:
			blocks = append(blocks, imageBlock(p))
		}
	}
	return blocks
}

func encodeToolChoice(tc *domain.ToolChoice, parallel *bool) *anthropic.ToolChoice {
	if tc == nil && parallel == nil {
		return nil
	}
	out := &anthropic.ToolChoice{Type: "auto"}
	if tc != nil {
		switch tc.Mode {
		case domain.ToolChoiceRequired:
			out.Type = "any"
		case domain.ToolChoiceNone:
			out.Type = "none"
		case domain.ToolChoiceTool:
			out.Type, out.Name = "tool", tc.Name
		}
	}
	if parallel != nil {
		disable := !*parallel
		out.DisableParallelToolUse = &disable
	}
	return out
}

func encodeReasoning(out *anthropic.MessagesRequest, r *domain.Reasoning) {
	if r == nil {
		return
	}
	if r.Effort != "" {
		effort := string(r.Effort)
		if r.Effort == domain.EffortXHigh {
			effort = "max"
		}
		out.OutputConfig = &anthropic.OutputConfig{Effort: effort}
	}
	if r.Enabled != nil {
		out.Thinking = &anthropic.ThinkingConfig{Type: "disabled"}
		if *r.Enabled {
			out.Thinking.Type = "enabled"
			out.Thinking.BudgetTokens = codec.FirstInt(r.MaxTokens)
		}
	}
}
