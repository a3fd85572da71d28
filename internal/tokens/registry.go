// Package tokens estimates input token counts for canonical requests.
package tokens

import (
	"context"
	"fmt"
	"strings"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// Count is the result of counting a request's input tokens.
type Count struct {
	InputTokens int    `json:"input_tokens"`
	Model       string `json:"model,omitempty"`
	Estimated   bool   `json:"estimated,omitempty"`
}

// Counter counts input tokens for the models it supports.
type Counter interface {
	CountTokens(ctx context.Context, req *domain.ChatRequest) (*Count, error)
	SupportsModel(model string) bool
}

// Registry picks a counter per model. Registered counters are tried in
// order; the fallback estimator handles everything else.
type Registry struct {
	counters []Counter
	fallback Counter
}

// NewRegistry creates a registry with the character estimator as fallback.
func NewRegistry(counters ...Counter) *Registry {
	return &Registry{counters: counters, fallback: NewEstimator()}
}

// Default returns a registry with the tiktoken counter for OpenAI models.
func Default() *Registry {
	return NewRegistry(NewOpenAICounter())
}

// Register adds a counter after the existing ones.
func (r *Registry) Register(counter Counter) {
	r.counters = append(r.counters, counter)
}

// SetFallback sets the counter used for models no registered counter
// supports.
func (r *Registry) SetFallback(counter Counter) {
	r.fallback = counter
}

// CountTokens counts with the first counter that supports req.Model.
func (r *Registry) CountTokens(ctx context.Context, req *domain.ChatRequest) (*Count, error) {
	if c := r.GetCounter(req.Model); c != nil {
		return c.CountTokens(ctx, req)
	}
	return nil, fmt.Errorf("no token counter available for model: %s", req.Model)
}

// GetCounter returns the counter that would be used for model.
func (r *Registry) GetCounter(model string) Counter {
	for _, counter := range r.counters {
		if counter.SupportsModel(model) {
			return counter
		}
	}
	return r.fallback
}

// Estimator approximates token counts from character length.
type Estimator struct {
	// CharsPerToken is the average characters per token (default: 4)
	CharsPerToken float64
}

// NewEstimator creates a new token estimator.
func NewEstimator() *Estimator {
	return &Estimator{CharsPerToken: 4.0}
}

// CountTokens estimates the token count.
func (e *Estimator) CountTokens(_ context.Context, req *domain.ChatRequest) (*Count, error) {
	chars := 0
	for _, msg := range req.Messages {
		chars += len(msg.Role) + 4
		for _, text := range messageTexts(msg) {
			chars += len(text)
		}
	}
	for _, tool := range req.Tools {
		chars += len(tool.Name) + len(tool.Description) + len(tool.Parameters)
	}

	return &Count{
		InputTokens: int(float64(chars) / e.CharsPerToken),
		Model:       req.Model,
		Estimated:   true,
	}, nil
}

// SupportsModel returns true - estimator supports all models as a fallback.
func (e *Estimator) SupportsModel(string) bool {
	return true
}

// messageTexts lists every string in msg that reaches the model as text.
// Images and audio are not counted.
func messageTexts(msg domain.Message) []string {
	var out []string
	for _, part := range msg.Content {
		switch p := part.(type) {
		case domain.TextPart:
			out = append(out, p.Text)
		case domain.ReasoningPart:
			out = append(out, p.Text)
		}
	}
	for _, tc := range msg.ToolCalls {
		out = append(out, tc.Name, tc.Arguments)
	}
	for _, r := range msg.ToolResults {
		out = append(out, r.Content)
	}
	return out
}

// ModelMatcher matches model names by exact name or prefix.
type ModelMatcher struct {
	prefixes []string
	exact    []string
}

// NewModelMatcher creates a new model matcher.
func NewModelMatcher(prefixes, exact []string) *ModelMatcher {
	return &ModelMatcher{prefixes: prefixes, exact: exact}
}

// Matches returns true if the model matches any pattern.
func (m *ModelMatcher) Matches(model string) bool {
	model = strings.ToLower(model)
	for _, e := range m.exact {
		if model == e {
			return true
		}
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
