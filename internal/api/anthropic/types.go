// Package anthropic provides the Anthropic Messages API wire types.
package anthropic

import (
	"bytes"
	"encoding/json"

	"github.com/tjfontaine/polyglot-translate/internal/api/openai"
)

// MessagesRequest represents an Anthropic Messages API request.
type MessagesRequest struct {
	Model           string    `json:"model"`
	Messages        []Message `json:"messages"`
	System          *Content  `json:"system,omitempty"`
	MaxTokens       *int      `json:"max_tokens,omitempty"`
	MaxOutputTokens *int      `json:"max_output_tokens,omitempty"`
	Temperature     *float64  `json:"temperature,omitempty"`
	TopP            *float64  `json:"top_p,omitempty"`
	TopK            *int      `json:"top_k,omitempty"`
	Stream          bool      `json:"stream,omitempty"`
	StopSequences   []string  `json:"stop_sequences,omitempty"`

	Tools      []Tool      `json:"tools,omitempty"`
	ToolChoice *ToolChoice `json:"tool_choice,omitempty"`
	Metadata   *Metadata   `json:"metadata,omitempty"`

	// Extended thinking and effort controls.
	Thinking     *ThinkingConfig `json:"thinking,omitempty"`
	OutputConfig *OutputConfig   `json:"output_config,omitempty"`

	ServiceTier string `json:"service_tier,omitempty"`
	Speed       string `json:"speed,omitempty"`
}

// Message represents a message in the conversation.
type Message struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// Content is a string or an array of content blocks. A string decodes to a
// single text block; other JSON kinds are recorded in Invalid.
type Content struct {
	Blocks  []ContentBlock
	Invalid string

	// FromString is set when the wire value was a plain string.
	FromString bool
}

// TextContent returns content holding one text block.
func TextContent(s string) Content {
	return Content{Blocks: []ContentBlock{{Type: BlockText, Text: s}}}
}

// UnmarshalJSON handles both string and array content formats.
func (c *Content) UnmarshalJSON(data []byte) error {
	*c = Content{}
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		c.Invalid = "null"
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		c.Blocks = []ContentBlock{{Type: BlockText, Text: s}}
		c.FromString = true
		return nil
	case data[0] == '[':
		var blocks []ContentBlock
		if err := json.Unmarshal(data, &blocks); err != nil {
			c.Invalid = "array of content blocks"
			return nil
		}
		if blocks == nil {
			blocks = []ContentBlock{}
		}
		c.Blocks = blocks
		return nil
	default:
		c.Invalid = openai.JSONKind(data)
		return nil
	}
}

// MarshalJSON always renders the array form.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Blocks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Blocks)
}

// Content block types.
const (
	BlockText       = "text"
	BlockImage      = "image"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
	BlockThinking   = "thinking"
)

// ContentBlock represents a single content block in a request or response.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolUseID string             `json:"tool_use_id,omitempty"`
	Content   *ToolResultContent `json:"content,omitempty"`
	IsError   bool               `json:"is_error,omitempty"`

	// image
	Source *ImageSource `json:"source,omitempty"`

	// thinking
	Thinking  string `json:"thinking,omitempty"`
	Signature string `json:"signature,omitempty"`

	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

// MarshalJSON renders each block type with the fields Anthropic requires,
// including empty text and an input object on tool_use.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	switch b.Type {
	case BlockText:
		return json.Marshal(struct {
			Type         string        `json:"type"`
			Text         string        `json:"text"`
			CacheControl *CacheControl `json:"cache_control,omitempty"`
		}{b.Type, b.Text, b.CacheControl})
	case BlockToolUse:
		input := b.Input
		if len(input) == 0 {
			input = json.RawMessage("{}")
		}
		return json.Marshal(struct {
			Type  string          `json:"type"`
			ID    string          `json:"id"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		}{b.Type, b.ID, b.Name, input})
	case BlockThinking:
		return json.Marshal(struct {
			Type      string `json:"type"`
			Thinking  string `json:"thinking"`
			Signature string `json:"signature"`
		}{b.Type, b.Thinking, b.Signature})
	default:
		type plain ContentBlock
		return json.Marshal(plain(b))
	}
}

// ToolResultContent is the content of a tool_result block: a string or an
// array of blocks.
type ToolResultContent struct {
	Text   *string
	Blocks []ContentBlock
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *ToolResultContent) UnmarshalJSON(data []byte) error {
	*t = ToolResultContent{}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t.Text = &s
		return nil
	}
	return json.Unmarshal(data, &t.Blocks)
}

// MarshalJSON implements json.Marshaler.
func (t ToolResultContent) MarshalJSON() ([]byte, error) {
	if t.Text != nil {
		return json.Marshal(*t.Text)
	}
	return json.Marshal(t.Blocks)
}

// String joins the text of every text block.
func (t ToolResultContent) String() string {
	if t.Text != nil {
		return *t.Text
	}
	var b bytes.Buffer
	for _, block := range t.Blocks {
		if block.Type == BlockText {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// ImageSource represents an image source.
type ImageSource struct {
	Type      string `json:"type"` // "base64" or "url"
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

// CacheControl represents cache control settings.
type CacheControl struct {
	Type string `json:"type"` // "ephemeral"
}

// Tool represents a tool that the model can use.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// ToolChoice represents how the model should use tools.
type ToolChoice struct {
	Type string `json:"type"` // "auto", "any", "tool", "none"
	Name string `json:"name,omitempty"`

	DisableParallelToolUse *bool `json:"disable_parallel_tool_use,omitempty"`
}

// Metadata represents request metadata.
type Metadata struct {
	UserID string `json:"user_id,omitempty"`
}

// ThinkingConfig configures extended thinking behavior.
type ThinkingConfig struct {
	Type         string `json:"type"` // "enabled", "disabled", "adaptive"
	BudgetTokens *int   `json:"budget_tokens,omitempty"`
	Effort       string `json:"effort,omitempty"`
}

// OutputConfig carries the effort control.
type OutputConfig struct {
	Effort string `json:"effort,omitempty"`
}

// MessagesResponse represents an Anthropic Messages API response. ID is the
// gateway request id; NativeResponseID is the upstream provider's id.
type MessagesResponse struct {
	ID               string         `json:"id"`
	NativeResponseID string         `json:"nativeResponseId,omitempty"`
	Type             string         `json:"type"`
	Role             string         `json:"role"`
	Content          []ContentBlock `json:"content"`
	Model            string         `json:"model"`
	StopReason       *string        `json:"stop_reason"`
	StopSequence     *string        `json:"stop_sequence"`
	Usage            *Usage         `json:"usage,omitempty"`
}

// Usage represents token usage.
type Usage struct {
	InputTokens          int    `json:"input_tokens"`
	OutputTokens         int    `json:"output_tokens"`
	CacheReadInputTokens *int   `json:"cache_read_input_tokens,omitempty"`
	ServiceTier          string `json:"service_tier,omitempty"`
}

// Streaming types

// MessageStartEvent is sent at the start of a message.
type MessageStartEvent struct {
	Type    string       `json:"type"`
	Message MessageShell `json:"message"`
}

// MessageShell is the partial message announced by message_start.
type MessageShell struct {
	ID      string         `json:"id,omitempty"`
	Type    string         `json:"type"`
	Role    string         `json:"role"`
	Model   string         `json:"model,omitempty"`
	Content []ContentBlock `json:"content"`
}

// ContentBlockStartEvent is sent at the start of a content block.
type ContentBlockStartEvent struct {
	Type         string       `json:"type"`
	Index        int          `json:"index"`
	ContentBlock ContentBlock `json:"content_block"`
}

// ContentBlockDeltaEvent is sent for content block updates.
type ContentBlockDeltaEvent struct {
	Type  string     `json:"type"`
	Index int        `json:"index"`
	Delta BlockDelta `json:"delta"`
}

// BlockDelta represents the delta in a content block. Exactly one of the
// payload fields is set, matching Type.
type BlockDelta struct {
	Type        string  `json:"type"` // "text_delta", "thinking_delta", "input_json_delta"
	Text        *string `json:"text,omitempty"`
	Thinking    *string `json:"thinking,omitempty"`
	PartialJSON *string `json:"partial_json,omitempty"`
}

// MessageDeltaEvent is sent for message-level updates.
type MessageDeltaEvent struct {
	Type  string        `json:"type"`
	Delta *MessageDelta `json:"delta,omitempty"`
	Usage *Usage        `json:"usage,omitempty"`
}

// MessageDelta represents updates to the message. StopReason renders as
// null when unset.
type MessageDelta struct {
	StopReason   *string `json:"stop_reason"`
	StopSequence *string `json:"stop_sequence,omitempty"`
}

// ErrorResponse represents an Anthropic API error, both as an HTTP body
// and as the in-band stream error event.
type ErrorResponse struct {
	Type  string   `json:"type"`
	Error APIError `json:"error"`
}

// APIError contains error details.
type APIError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return e.Message
	}
	return e.Type + ": " + e.Message
}
