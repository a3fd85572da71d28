// Package openai provides the OpenAI Chat Completions wire types shared by
// the chat codec, the Responses codec fallback and the HTTP surface.
package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChatCompletionRequest represents an OpenAI chat completion request.
type ChatCompletionRequest struct {
	Model    string                  `json:"model"`
	Messages []ChatCompletionMessage `json:"messages"`

	// System is a gateway convenience field prepended as a system message.
	System *MessageContent `json:"system,omitempty"`

	MaxTokens           *int            `json:"max_tokens,omitempty"`
	MaxCompletionTokens *int            `json:"max_completion_tokens,omitempty"`
	MaxOutputTokens     *int            `json:"max_output_tokens,omitempty"`
	Temperature         *float64        `json:"temperature,omitempty"`
	TopP                *float64        `json:"top_p,omitempty"`
	TopK                *int            `json:"top_k,omitempty"`
	N                   *int            `json:"n,omitempty"`
	Stream              bool            `json:"stream,omitempty"`
	StreamOptions       *StreamOptions  `json:"stream_options,omitempty"`
	Stop                StopList        `json:"stop,omitempty"`
	PresencePenalty     *float64        `json:"presence_penalty,omitempty"`
	FrequencyPenalty    *float64        `json:"frequency_penalty,omitempty"`
	LogitBias           map[string]int  `json:"logit_bias,omitempty"`
	Logprobs            *bool           `json:"logprobs,omitempty"`
	TopLogprobs         *int            `json:"top_logprobs,omitempty"`
	User                string          `json:"user,omitempty"`
	Tools               []Tool          `json:"tools,omitempty"`
	ToolChoice          *ToolChoice     `json:"tool_choice,omitempty"`
	ParallelToolCalls   *bool           `json:"parallel_tool_calls,omitempty"`
	MaxToolCalls        *int            `json:"max_tool_calls,omitempty"`
	ResponseFormat      *ResponseFormat `json:"response_format,omitempty"`
	Seed                *int64          `json:"seed,omitempty"`

	Reasoning       *Reasoning `json:"reasoning,omitempty"`
	ReasoningEffort string     `json:"reasoning_effort,omitempty"`

	ServiceTier string            `json:"service_tier,omitempty"`
	Speed       string            `json:"speed,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`

	// Provider carries routing preferences in the OpenRouter shape.
	Provider *ProviderPreferences `json:"provider,omitempty"`
}

// ProviderPreferences orders, restricts or excludes upstream providers.
type ProviderPreferences struct {
	Order  []string `json:"order,omitempty"`
	Only   []string `json:"only,omitempty"`
	Ignore []string `json:"ignore,omitempty"`
}

// StreamOptions configures streaming behavior.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage,omitempty"`
}

// Reasoning is the gateway's reasoning configuration object.
type Reasoning struct {
	Effort    string `json:"effort,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Enabled   *bool  `json:"enabled,omitempty"`
	MaxTokens *int   `json:"max_tokens,omitempty"`
}

// ChatCompletionMessage represents a message in a chat completion request.
type ChatCompletionMessage struct {
	Role             string         `json:"role"`
	Content          MessageContent `json:"content"`
	Name             string         `json:"name,omitempty"`
	ToolCalls        []ToolCall     `json:"tool_calls,omitempty"`
	ToolCallID       string         `json:"tool_call_id,omitempty"`
	ReasoningContent string         `json:"reasoning_content,omitempty"`
}

// MessageContent is message content in any of its wire forms: null, a
// string, or an array of parts. A value of any other JSON kind is recorded
// in Invalid instead of failing the whole request, so the decoder can report
// which message was malformed.
type MessageContent struct {
	Text    *string
	Parts   []ContentPart
	Invalid string

	// Raw is the content exactly as received.
	Raw json.RawMessage
}

// TextContent returns string content.
func TextContent(s string) MessageContent {
	return MessageContent{Text: &s}
}

// IsNull reports whether the content was absent or null.
func (c MessageContent) IsNull() bool {
	return c.Text == nil && c.Parts == nil && c.Invalid == ""
}

// String returns string content, or the raw JSON of any other form. Null
// content is "".
func (c MessageContent) String() string {
	switch {
	case c.Text != nil:
		return *c.Text
	case c.IsNull():
		return ""
	case len(c.Raw) > 0:
		var buf bytes.Buffer
		if err := json.Compact(&buf, c.Raw); err == nil {
			return buf.String()
		}
		return string(c.Raw)
	default:
		b, _ := json.Marshal(c.Parts)
		return string(b)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	*c = MessageContent{}
	data = bytes.TrimSpace(data)
	if len(data) > 0 {
		c.Raw = append(json.RawMessage(nil), data...)
	}
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		c.Text = &s
		return nil
	case data[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		c.Parts = make([]ContentPart, 0, len(raw))
		for _, r := range raw {
			var p ContentPart
			if err := json.Unmarshal(r, &p); err != nil {
				c.Parts = nil
				c.Invalid = "array of content parts"
				return nil
			}
			c.Parts = append(c.Parts, p)
		}
		return nil
	default:
		c.Invalid = JSONKind(data)
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	switch {
	case c.Parts != nil:
		return json.Marshal(c.Parts)
	case c.Text != nil:
		return json.Marshal(*c.Text)
	default:
		return []byte("null"), nil
	}
}

// JSONKind names the JSON kind of a raw value for error messages.
func JSONKind(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "empty"
	}
	switch data[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

// ContentPart is one element of array content.
type ContentPart struct {
	Type       string      `json:"type"` // "text", "image_url", "input_audio"
	Text       *string     `json:"text,omitempty"`
	ImageURL   *ImageURL   `json:"image_url,omitempty"`
	InputAudio *InputAudio `json:"input_audio,omitempty"`
}

// ImageURL references an image by URL or data URI.
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// InputAudio carries base64 audio.
type InputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format,omitempty"`
}

// StopList accepts a single stop string or an array of them.
type StopList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StopList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = StopList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("stop: expected string or array of strings")
	}
	*s = many
	return nil
}

// Tool represents a tool that the model can call.
type Tool struct {
	Type     string       `json:"type"`
	Function FunctionTool `json:"function"`
}

// FunctionTool describes a function tool.
type FunctionTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Strict      *bool           `json:"strict,omitempty"`
}

// ToolChoice is "auto", "none", "required" or a forced function. Unknown
// strings are kept in Mode for the decoder to resolve.
type ToolChoice struct {
	Mode string
	Name string
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *ToolChoice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &t.Mode)
	}
	var obj struct {
		Type     string `json:"type"`
		Name     string `json:"name"`
		Function *struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("tool_choice: expected string or object")
	}
	t.Mode = obj.Type
	t.Name = obj.Name
	if obj.Function != nil && obj.Function.Name != "" {
		t.Name = obj.Function.Name
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t ToolChoice) MarshalJSON() ([]byte, error) {
	if t.Name == "" {
		return json.Marshal(t.Mode)
	}
	return json.Marshal(map[string]any{
		"type":     "function",
		"function": map[string]string{"name": t.Name},
	})
}

// ToolCall represents a tool call made by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall represents a function call.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ResponseFormat specifies the format of the response.
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// JSONSchema is the json_schema response format payload.
type JSONSchema struct {
	Name   string          `json:"name,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
	Strict *bool           `json:"strict,omitempty"`
}

// ChatCompletionResponse represents a chat completion response. ID is the
// gateway request id; NativeResponseID is the upstream provider's id.
type ChatCompletionResponse struct {
	ID                string   `json:"id"`
	Object            string   `json:"object"`
	NativeResponseID  string   `json:"nativeResponseId,omitempty"`
	Created           int64    `json:"created"`
	Model             string   `json:"model"`
	Provider          string   `json:"provider,omitempty"`
	SystemFingerprint string   `json:"system_fingerprint,omitempty"`
	ServiceTier       string   `json:"service_tier,omitempty"`
	Choices           []Choice `json:"choices"`
	Usage             *Usage   `json:"usage,omitempty"`
}

// Choice represents a completion choice.
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// ResponseMessage is the assistant message of a completion choice. Content
// is always present, "" when the model produced no text.
type ResponseMessage struct {
	Role             string            `json:"role"`
	Content          string            `json:"content"`
	ToolCalls        []ToolCall        `json:"tool_calls,omitempty"`
	ReasoningContent string            `json:"reasoning_content,omitempty"`
	ReasoningDetails []ReasoningDetail `json:"reasoning_details,omitempty"`
	Images           []OutputImage     `json:"images,omitempty"`
}

// ReasoningDetail is one reasoning segment in structured form.
type ReasoningDetail struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Type  string `json:"type"`
	Text  string `json:"text"`
}

// OutputImage is an image produced by the model.
type OutputImage struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
	MimeType string   `json:"mime_type,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens        int                  `json:"prompt_tokens"`
	CompletionTokens    int                  `json:"completion_tokens"`
	TotalTokens         int                  `json:"total_tokens"`
	ReasoningTokens     *int                 `json:"reasoning_tokens,omitempty"`
	InputDetails        *InputDetails        `json:"input_details,omitempty"`
	OutputTokensDetails *OutputTokensDetails `json:"output_tokens_details,omitempty"`
}

// InputDetails breaks down prompt tokens.
type InputDetails struct {
	CachedTokens *int `json:"cached_tokens,omitempty"`
}

// OutputTokensDetails breaks down completion tokens.
type OutputTokensDetails struct {
	ReasoningTokens *int `json:"reasoning_tokens,omitempty"`
}

// ChatCompletionChunk represents a streaming chunk.
type ChatCompletionChunk struct {
	ID      string        `json:"id,omitempty"`
	Object  string        `json:"object"`
	Created int64         `json:"created,omitempty"`
	Model   string        `json:"model,omitempty"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// ChunkChoice represents a choice in a streaming chunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

// ChunkDelta represents the delta content in a streaming chunk.
type ChunkDelta struct {
	Role             string          `json:"role,omitempty"`
	Content          *string         `json:"content,omitempty"`
	ReasoningContent *string         `json:"reasoning_content,omitempty"`
	ToolCalls        []ToolCallChunk `json:"tool_calls,omitempty"`
}

// ToolCallChunk represents a partial tool call in streaming.
type ToolCallChunk struct {
	Index    int               `json:"index"`
	ID       string            `json:"id,omitempty"`
	Type     string            `json:"type,omitempty"`
	Function FunctionCallChunk `json:"function"`
}

// FunctionCallChunk represents a partial function call.
type FunctionCallChunk struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments"`
}

// StreamError is the in-band error frame of a chat stream.
type StreamError struct {
	Object  string `json:"object"`
	Message string `json:"message"`
}

// ErrorResponse represents an OpenAI API error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError contains error details.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}
