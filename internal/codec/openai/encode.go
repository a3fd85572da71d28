package openai

import (
	"fmt"

	"github.com/tjfontaine/polyglot-translate/internal/api/openai"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// EncodeResponse renders a canonical response as a chat completion.
func EncodeResponse(resp *domain.ChatResponse, ctx codec.EncodeContext) *openai.ChatCompletionResponse {
	id := ctx.PrimaryID(resp)
	choices := make([]openai.Choice, 0, len(resp.Choices))
	for _, c := range resp.Choices {
		choices = append(choices, encodeChoice(c, id))
	}

	return &openai.ChatCompletionResponse{
		ID:                id,
		Object:            "chat.completion",
		NativeResponseID:  ctx.NativeID(resp),
		Created:           ctx.CreatedFor(resp),
		Model:             ctx.ModelFor(resp),
		Provider:          resp.Provider,
		SystemFingerprint: resp.SystemFingerprint,
		ServiceTier:       resp.ServiceTier,
		Choices:           choices,
		Usage:             EncodeUsage(resp.Usage),
	}
}

func encodeChoice(c domain.Choice, requestID string) openai.Choice {
	msg := openai.ResponseMessage{
		Role:    "assistant",
		Content: c.Message.Text(),
	}

	reasoning := c.Message.ReasoningTexts()
	for i, text := range reasoning {
		msg.ReasoningContent += text
		msg.ReasoningDetails = append(msg.ReasoningDetails, openai.ReasoningDetail{
			ID:    fmt.Sprintf("%s-reasoning-%d-%d", requestID, c.Index, i+1),
			Index: i,
			Type:  "text",
			Text:  text,
		})
	}

	for _, img := range c.Message.Images() {
		msg.Images = append(msg.Images, openai.OutputImage{
			Type:     "image_url",
			ImageURL: openai.ImageURL{URL: codec.ImageURL(img)},
			MimeType: img.MimeType,
		})
	}

	for _, tc := range c.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
			ID:       tc.ID,
			Type:     "function",
			Function: openai.FunctionCall{Name: tc.Name, Arguments: tc.Arguments},
		})
	}

	return openai.Choice{
		Index:        c.Index,
		Message:      msg,
		FinishReason: c.FinishReason.ToOpenAI(),
	}
}

// EncodeUsage renders canonical usage. Reasoning tokens appear both at the
// top level and under output_tokens_details.
func EncodeUsage(u *domain.Usage) *openai.Usage {
	if u == nil {
		return nil
	}
	n := u.Normalize()
	out := &openai.Usage{
		PromptTokens:     n.InputTokens,
		CompletionTokens: n.OutputTokens,
		TotalTokens:      n.TotalTokens,
	}
	if n.ReasoningTokens != nil {
		r := *n.ReasoningTokens
		out.ReasoningTokens = &r
		out.OutputTokensDetails = &openai.OutputTokensDetails{ReasoningTokens: &r}
	}
	if n.CachedInputTokens != nil {
		cached := *n.CachedInputTokens
		out.InputDetails = &openai.InputDetails{CachedTokens: &cached}
	}
	return out
}
