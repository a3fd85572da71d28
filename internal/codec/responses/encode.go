package responses

import (
	"github.com/tjfontaine/polyglot-translate/internal/api/responses"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// Response statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusIncomplete = "incomplete"
	StatusFailed     = "failed"
)

// EncodeResponse renders a canonical response as a Responses object. For
// each choice the output lists reasoning items, then the message, then one
// function_call item per tool call.
func EncodeResponse(resp *domain.ChatResponse, ctx codec.EncodeContext) *responses.Response {
	out := &responses.Response{
		ID:               ctx.PrimaryID(resp),
		NativeResponseID: ctx.NativeID(resp),
		Object:           "response",
		Created:          ctx.CreatedFor(resp),
		Model:            ctx.ModelFor(resp),
		Status:           StatusCompleted,
		Output:           []responses.OutputItem{},
		Usage:            EncodeUsage(resp.Usage),
		ServiceTier:      resp.ServiceTier,
	}

	for _, c := range resp.Choices {
		out.Output = append(out.Output, encodeChoice(c)...)
	}

	if len(resp.Choices) > 0 {
		out.Status = Status(resp.Choices[0].FinishReason)
		if out.Status == StatusIncomplete {
			out.IncompleteDetails = &responses.IncompleteDetails{Reason: "max_output_tokens"}
		}
	}
	return out
}

// Status derives the response status from a finish reason.
func Status(f domain.FinishReason) string {
	switch f {
	case domain.FinishLength:
		return StatusIncomplete
	case domain.FinishError:
		return StatusFailed
	default:
		return StatusCompleted
	}
}

func encodeChoice(c domain.Choice) []responses.OutputItem {
	var items []responses.OutputItem
	for _, text := range c.Message.ReasoningTexts() {
		items = append(items, responses.OutputItem{
			Type:    "reasoning",
			Content: []responses.OutputContent{{Type: "reasoning_text", Text: text}},
		})
	}

	var content []responses.OutputContent
	for _, part := range c.Message.Content {
		switch p := part.(type) {
		case domain.TextPart:
			content = append(content, responses.OutputContent{Type: "output_text", Text: p.Text})
		case domain.ImagePart:
			img := responses.OutputContent{Type: "output_image", MimeType: p.MimeType}
			if p.Source == domain.SourceData {
				img.B64JSON = p.Data
			} else {
				img.ImageURL = p.Data
			}
			content = append(content, img)
		}
	}
	if len(content) == 0 && len(c.Message.ToolCalls) == 0 {
		content = []responses.OutputContent{{Type: "output_text"}}
	}
	if len(content) > 0 {
		items = append(items, responses.OutputItem{
			Type:    "message",
			Status:  StatusCompleted,
			Role:    "assistant",
			Content: content,
		})
	}

	for _, tc := range c.Message.ToolCalls {
		args := tc.Arguments
		if args == "" {
			args = "{}"
		}
		items = append(items, responses.OutputItem{
			Type:      "function_call",
			ID:        tc.ID,
			Status:    StatusCompleted,
			CallID:    tc.ID,
			Name:      tc.Name,
			Arguments: args,
		})
	}
	return items
}

// EncodeUsage renders canonical usage with Responses field names. Reasoning
// tokens appear both at the top level and under output_tokens_details.
func EncodeUsage(u *domain.Usage) *responses.Usage {
	if u == nil {
		return nil
	}
	n := u.Normalize()
	out := &responses.Usage{
		InputTokens:  n.InputTokens,
		OutputTokens: n.OutputTokens,
		TotalTokens:  n.TotalTokens,
	}
	if n.CachedInputTokens != nil {
		out.InputTokensDetails = &responses.InputTokensDetails{CachedTokens: *n.CachedInputTokens}
	}
	if n.ReasoningTokens != nil {
		r := *n.ReasoningTokens
		out.ReasoningTokens = &r
		out.OutputTokensDetails = &responses.OutputTokensDetails{ReasoningTokens: r}
	}
	return out
}
