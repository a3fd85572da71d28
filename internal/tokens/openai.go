package tokens

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// Chat framing overhead, in tokens.
const (
	tokensPerMessage  = 3
	tokensPerRole     = 1
	tokensPerToolCall = 3
	tokensPerResult   = 2
	tokensPerTool     = 7
	assistantPriming  = 3
)

// OpenAICounter counts tokens for OpenAI models with tiktoken.
type OpenAICounter struct {
	matcher *ModelMatcher

	mu     sync.RWMutex
	codecs map[tokenizer.Encoding]tokenizer.Codec
}

// NewOpenAICounter creates a new OpenAI token counter.
func NewOpenAICounter() *OpenAICounter {
	return &OpenAICounter{
		matcher: NewModelMatcher(
			// "o" prefixes cover the reasoning models (o1, o3, o4-mini, ...).
			[]string{"gpt-", "o1", "o3", "o4", "o5", "chatgpt-", "text-embedding"},
			[]string{"davinci", "curie", "babbage", "ada"},
		),
		codecs: make(map[tokenizer.Encoding]tokenizer.Codec),
	}
}

func (c *OpenAICounter) codecFor(model string) (tokenizer.Codec, error) {
	if codec, err := tokenizer.ForModel(modelFor(model)); err == nil {
		return codec, nil
	}

	encoding := encodingFor(model)
	c.mu.RLock()
	cached, ok := c.codecs[encoding]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer encoding %s: %w", encoding, err)
	}
	c.mu.Lock()
	c.codecs[encoding] = codec
	c.mu.Unlock()
	return codec, nil
}

// modelFor maps a model id onto the tokenizer's model table. Unknown ids
// are passed through and resolved by encoding instead.
func modelFor(model string) tokenizer.Model {
	model = strings.ToLower(model)
	switch {
	case model == "gpt-5-mini" || strings.HasPrefix(model, "gpt-5-mini-"):
		return tokenizer.GPT5Mini
	case model == "gpt-5-nano" || strings.HasPrefix(model, "gpt-5-nano-"):
		return tokenizer.GPT5Nano
	case strings.HasPrefix(model, "gpt-5"), strings.HasPrefix(model, "gpt-6"):
		return tokenizer.GPT5
	case strings.HasPrefix(model, "gpt-4.1"):
		return tokenizer.GPT41
	case strings.HasPrefix(model, "gpt-4o"), strings.HasPrefix(model, "chatgpt-4o"):
		return tokenizer.GPT4o
	case strings.HasPrefix(model, "o1"):
		if strings.Contains(model, "mini") {
			return tokenizer.O1Mini
		}
		return tokenizer.O1
	case strings.HasPrefix(model, "o3"):
		if strings.Contains(model, "mini") {
			return tokenizer.O3Mini
		}
		return tokenizer.O3
	case strings.HasPrefix(model, "o4"), strings.HasPrefix(model, "o5"):
		return tokenizer.O4Mini
	case strings.HasPrefix(model, "gpt-4"):
		return tokenizer.GPT4
	case strings.HasPrefix(model, "gpt-3.5"):
		return tokenizer.GPT35Turbo
	case strings.HasPrefix(model, "text-embedding"):
		return tokenizer.TextEmbeddingAda002
	default:
		return tokenizer.Model(model)
	}
}

// encodingFor picks the encoding for models the tokenizer does not know.
// Current model families use o200k_base; GPT-4 and GPT-3.5 use
// cl100k_base; the legacy completion models use r50k_base.
func encodingFor(model string) tokenizer.Encoding {
	model = strings.ToLower(model)
	switch {
	case strings.HasPrefix(model, "gpt-4o"), strings.HasPrefix(model, "gpt-4.1"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4"), strings.HasPrefix(model, "gpt-3.5"), strings.HasPrefix(model, "text-embedding"):
		return tokenizer.Cl100kBase
	case model == "davinci" || model == "curie" || model == "babbage" || model == "ada":
		return tokenizer.R50kBase
	default:
		return tokenizer.O200kBase
	}
}

// CountTokens counts the prompt tokens of req, including chat framing and
// tool definitions.
func (c *OpenAICounter) CountTokens(_ context.Context, req *domain.ChatRequest) (*Count, error) {
	codec, err := c.codecFor(req.Model)
	if err != nil {
		return nil, err
	}
	count := func(s string) int {
		if s == "" {
			return 0
		}
		ids, _, _ := codec.Encode(s)
		return len(ids)
	}

	total := 0
	for _, msg := range req.Messages {
		total += tokensPerMessage + tokensPerRole
		for _, part := range msg.Content {
			switch p := part.(type) {
			case domain.TextPart:
				total += count(p.Text)
			case domain.ReasoningPart:
				total += count(p.Text)
			}
		}
		for _, tc := range msg.ToolCalls {
			total += count(tc.Name) + count(tc.Arguments) + tokensPerToolCall
		}
		for _, r := range msg.ToolResults {
			total += count(r.Content) + tokensPerResult
		}
	}
	for _, tool := range req.Tools {
		total += count(tool.Name) + count(tool.Description) + count(string(tool.Parameters)) + tokensPerTool
	}
	total += assistantPriming

	return &Count{InputTokens: total, Model: req.Model}, nil
}

// SupportsModel returns true for OpenAI models.
func (c *OpenAICounter) SupportsModel(model string) bool {
	return c.matcher.Matches(model)
}

// CountText counts tokens for a plain text string.
func (c *OpenAICounter) CountText(model, text string) (int, error) {
	codec, err := c.codecFor(model)
	if err != nil {
		return 0, err
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
