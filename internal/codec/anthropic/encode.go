package anthropic

import (
	"github.com/tjfontaine/polyglot-translate/internal/api/anthropic"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// EncodeResponse renders the first choice of a canonical response as an
// Anthropic message. Blocks are ordered thinking, text, image, tool_use. A
// message without tool calls always carries a text block, empty if need be.
func EncodeResponse(resp *domain.ChatResponse, ctx codec.EncodeContext) *anthropic.MessagesResponse {
	out := &anthropic.MessagesResponse{
		ID:               ctx.PrimaryID(resp),
		NativeResponseID: ctx.NativeID(resp),
		Type:             "message",
		Role:             "assistant",
		Model:            ctx.ModelFor(resp),
		Usage:            EncodeUsage(resp.Usage, resp.ServiceTier),
	}

	if len(resp.Choices) == 0 {
		out.Content = []anthropic.ContentBlock{{Type: anthropic.BlockText}}
		out.StopReason = domain.FinishStop.ToAnthropic()
		return out
	}

	choice := resp.Choices[0]
	out.Content = EncodeBlocks(choice.Message)
	out.StopReason = choice.FinishReason.ToAnthropic()
	if choice.StopSequence != nil {
		seq := *choice.StopSequence
		out.StopSequence = &seq
	}
	return out
}

// EncodeBlocks renders an assistant message as content blocks.
func EncodeBlocks(m domain.Message) []anthropic.ContentBlock {
	blocks := []anthropic.ContentBlock{}
	var images []anthropic.ContentBlock
	for _, part := range m.Content {
		switch p := part.(type) {
		case domain.ReasoningPart:
			if p.Text != "" {
				blocks = append(blocks, anthropic.ContentBlock{Type: anthropic.BlockThinking, Thinking: p.Text, Signature: p.Signature})
			}
		case domain.ImagePart:
			images = append(images, imageBlock(p))
		}
	}

	if text := m.Text(); text != "" || len(m.ToolCalls) == 0 {
		blocks = append(blocks, anthropic.ContentBlock{Type: anthropic.BlockText, Text: text})
	}
	blocks = append(blocks, images...)

	for _, tc := range m.ToolCalls {
		blocks = append(blocks, anthropic.ContentBlock{
			Type:  anthropic.BlockToolUse,
			ID:    tc.ID,
			Name:  tc.Name,
			Input: codec.ToolInput(tc.Arguments),
		})
	}
	return blocks
}

func imageBlock(p domain.ImagePart) anthropic.ContentBlock {
	if p.Source == domain.SourceData {
		mediaType, data := p.MimeType, p.Data
		if mt, payload, ok := codec.ParseDataURL(p.Data); ok {
			mediaType, data = mt, payload
		}
		return anthropic.ContentBlock{Type: anthropic.BlockImage, Source: &anthropic.ImageSource{
			Type:      "base64",
			MediaType: mediaType,
			Data:      data,
		}}
	}
	return anthropic.ContentBlock{Type: anthropic.BlockImage, Source: &anthropic.ImageSource{
		Type:      "url",
		MediaType: p.MimeType,
		URL:       p.Data,
	}}
}

// EncodeUsage renders canonical usage. Anthropic has no reasoning token
// field; service_tier is reported only for the tiers Anthropic names.
func EncodeUsage(u *domain.Usage, serviceTier string) *anthropic.Usage {
	if u == nil {
		return nil
	}
	out := &anthropic.Usage{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
	}
	if u.CachedInputTokens != nil {
		cached := *u.CachedInputTokens
		out.CacheReadInputTokens = &cached
	}
	switch serviceTier {
	case "standard", "priority", "batch":
		out.ServiceTier = serviceTier
	}
	return out
}
