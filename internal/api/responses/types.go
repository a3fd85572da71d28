// Package responses provides the OpenAI Responses API wire types.
package responses

import (
	"bytes"
	"encoding/json"

	"github.com/tjfontaine/polyglot-translate/internal/api/openai"
)

// Request represents a request to the Responses API.
type Request struct {
	Model string `json:"model"`

	// Input can be a string or an array of input items.
	Input Input `json:"input"`

	// Messages is accepted for clients that send Chat Completions bodies to
	// the Responses endpoint.
	Messages []openai.ChatCompletionMessage `json:"messages,omitempty"`

	// Instructions becomes the leading system message.
	Instructions string `json:"instructions,omitempty"`

	Tools             []Tool      `json:"tools,omitempty"`
	ToolChoice        *ToolChoice `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool       `json:"parallel_tool_calls,omitempty"`
	MaxToolCalls      *int        `json:"max_tool_calls,omitempty"`
	MaxToolsCalls     *int        `json:"max_tools_calls,omitempty"` // legacy spelling

	MaxOutputTokens  *int            `json:"max_output_tokens,omitempty"`
	MaxTokens        *int            `json:"max_tokens,omitempty"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	TopK             *int            `json:"top_k,omitempty"`
	Seed             *int64          `json:"seed,omitempty"`
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`
	Stop             openai.StopList `json:"stop,omitempty"`
	LogitBias        map[string]int  `json:"logit_bias,omitempty"`
	Logprobs         *bool           `json:"logprobs,omitempty"`
	TopLogprobs      *int            `json:"top_logprobs,omitempty"`

	Reasoning      *Reasoning  `json:"reasoning,omitempty"`
	Text           *TextConfig `json:"text,omitempty"`
	ResponseFormat *Format     `json:"response_format,omitempty"`

	Stream             bool              `json:"stream,omitempty"`
	Store              *bool             `json:"store,omitempty"`
	PreviousResponseID string            `json:"previous_response_id,omitempty"`
	ServiceTier        string            `json:"service_tier,omitempty"`
	Speed              string            `json:"speed,omitempty"`
	User               string            `json:"user,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`

	Provider *openai.ProviderPreferences `json:"provider,omitempty"`
}

// Input is a plain string or an array of input items. Any other JSON kind
// is recorded in Invalid.
type Input struct {
	Text    *string
	Items   []InputItem
	Invalid string
}

// MarshalJSON implements json.Marshaler.
func (in Input) MarshalJSON() ([]byte, error) {
	if in.Text != nil {
		return json.Marshal(*in.Text)
	}
	if in.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(in.Items)
}

// UnmarshalJSON implements json.Unmarshaler.
func (in *Input) UnmarshalJSON(data []byte) error {
	*in = Input{}
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		in.Text = &s
		return nil
	case data[0] == '[':
		var items []InputItem
		if err := json.Unmarshal(data, &items); err != nil {
			in.Invalid = "array of input items"
			return nil
		}
		in.Items = items
		return nil
	default:
		in.Invalid = openai.JSONKind(data)
		return nil
	}
}

// InputItem is one element of the input array: a message, a bare input
// part, a function call, a function call output or a reasoning item.
type InputItem struct {
	Type string `json:"type,omitempty"`
	ID   string `json:"id,omitempty"`

	// Message items
	Role       string            `json:"role,omitempty"`
	Content    *Content          `json:"content,omitempty"`
	ToolCalls  []openai.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`

	// Bare input parts (input_text, input_image, input_audio)
	Text       *string            `json:"text,omitempty"`
	ImageURL   *ImageURL          `json:"image_url,omitempty"`
	Detail     string             `json:"detail,omitempty"`
	InputAudio *openai.InputAudio `json:"input_audio,omitempty"`

	// function_call and function_call_output items
	CallID    string          `json:"call_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments string          `json:"arguments,omitempty"`
	Output    json.RawMessage `json:"output,omitempty"`

	// reasoning items
	Summary []ContentPart `json:"summary,omitempty"`
}

// Content is message content: a string or an array of parts, with other
// kinds recorded in Invalid.
type Content struct {
	Text    *string
	Parts   []ContentPart
	Invalid string
}

// TextContent returns string content.
func TextContent(s string) *Content {
	return &Content{Text: &s}
}

// MarshalJSON implements json.Marshaler.
func (c Content) MarshalJSON() ([]byte, error) {
	switch {
	case c.Parts != nil:
		return json.Marshal(c.Parts)
	case c.Text != nil:
		return json.Marshal(*c.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Content) UnmarshalJSON(data []byte) error {
	*c = Content{}
	data = bytes.TrimSpace(data)
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
		var parts []ContentPart
		if err := json.Unmarshal(data, &parts); err != nil {
			c.Invalid = "array of content parts"
			return nil
		}
		if parts == nil {
			parts = []ContentPart{}
		}
		c.Parts = parts
		return nil
	default:
		c.Invalid = openai.JSONKind(data)
		return nil
	}
}

// ContentPart is one element of array content.
type ContentPart struct {
	Type       string             `json:"type"` // "input_text", "output_text", "input_image", "input_audio", ...
	Text       *string            `json:"text,omitempty"`
	ImageURL   *ImageURL          `json:"image_url,omitempty"`
	Detail     string             `json:"detail,omitempty"`
	InputAudio *openai.InputAudio `json:"input_audio,omitempty"`
}

// ImageURL is a URL or data URI. The Responses API sends a bare string;
// the Chat-style {"url": ...} object is accepted too.
type ImageURL struct {
	URL    string
	Detail string
}

// MarshalJSON implements json.Marshaler.
func (u ImageURL) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.URL)
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *ImageURL) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &u.URL)
	}
	var obj openai.ImageURL
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	u.URL, u.Detail = obj.URL, obj.Detail
	return nil
}

// Tool is a Responses function tool. Chat-style tools with a nested
// function object are accepted on input.
type Tool struct {
	Type        string               `json:"type"`
	Name        string               `json:"name,omitempty"`
	Description string               `json:"description,omitempty"`
	Parameters  json.RawMessage      `json:"parameters,omitempty"`
	Strict      *bool                `json:"strict,omitempty"`
	Function    *openai.FunctionTool `json:"function,omitempty"`
}

// ToolChoice is "auto", "none", "required" or a forced function.
type ToolChoice struct {
	Mode string
	Name string
}

// MarshalJSON implements json.Marshaler.
func (t ToolChoice) MarshalJSON() ([]byte, error) {
	if t.Name == "" {
		return json.Marshal(t.Mode)
	}
	return json.Marshal(map[string]string{"type": "function", "name": t.Name})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *ToolChoice) UnmarshalJSON(data []byte) error {
	var oc openai.ToolChoice
	if err := oc.UnmarshalJSON(data); err != nil {
		return err
	}
	t.Mode, t.Name = oc.Mode, oc.Name
	return nil
}

// Reasoning configures reasoning models.
type Reasoning struct {
	Effort    string `json:"effort,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Enabled   *bool  `json:"enabled,omitempty"`
	MaxTokens *int   `json:"max_tokens,omitempty"`
}

// TextConfig holds the text output configuration.
type TextConfig struct {
	Format *Format `json:"format,omitempty"`
}

// Format is a text output format. The nested json_schema object of the
// Chat API is accepted on input.
type Format struct {
	Type       string             `json:"type"`
	Name       string             `json:"name,omitempty"`
	Schema     json.RawMessage    `json:"schema,omitempty"`
	Strict     *bool              `json:"strict,omitempty"`
	JSONSchema *openai.JSONSchema `json:"json_schema,omitempty"`
}

// Response represents a Responses API response object. ID is the gateway
// request id; NativeResponseID is the upstream provider's id.
type Response struct {
	ID                string             `json:"id"`
	NativeResponseID  string             `json:"nativeResponseId,omitempty"`
	Object            string             `json:"object"`
	Created           int64              `json:"created_at,omitempty"`
	Model             string             `json:"model,omitempty"`
	Status            string             `json:"status"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
	Output            []OutputItem       `json:"output,omitempty"`
	Usage             *Usage             `json:"usage,omitempty"`
	ServiceTier       string             `json:"service_tier,omitempty"`
}

// IncompleteDetails explains an incomplete status.
type IncompleteDetails struct {
	Reason string `json:"reason"`
}

// OutputItem is one element of the response output.
type OutputItem struct {
	Type    string          `json:"type"` // "message", "reasoning", "function_call"
	ID      string          `json:"id,omitempty"`
	Status  string          `json:"status,omitempty"`
	Role    string          `json:"role,omitempty"`
	Content []OutputContent `json:"content,omitempty"`

	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// OutputContent is one content element of an output item.
type OutputContent struct {
	Type     string // "output_text", "reasoning_text", "output_image"
	Text     string
	ImageURL string
	B64JSON  string
	MimeType string
}

// MarshalJSON renders each content type with exactly its own fields.
func (c OutputContent) MarshalJSON() ([]byte, error) {
	switch c.Type {
	case "output_text":
		return json.Marshal(struct {
			Type        string `json:"type"`
			Text        string `json:"text"`
			Annotations []any  `json:"annotations"`
		}{c.Type, c.Text, []any{}})
	case "output_image":
		out := struct {
			Type     string           `json:"type"`
			B64JSON  string           `json:"b64_json,omitempty"`
			ImageURL *openai.ImageURL `json:"image_url,omitempty"`
			MimeType string           `json:"mime_type,omitempty"`
		}{Type: c.Type, B64JSON: c.B64JSON, MimeType: c.MimeType}
		if c.ImageURL != "" {
			out.ImageURL = &openai.ImageURL{URL: c.ImageURL}
		}
		return json.Marshal(out)
	default:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{c.Type, c.Text})
	}
}

// Usage is Responses token accounting.
type Usage struct {
	InputTokens         int                  `json:"input_tokens"`
	OutputTokens        int                  `json:"output_tokens"`
	TotalTokens         int                  `json:"total_tokens"`
	ReasoningTokens     *int                 `json:"reasoning_tokens,omitempty"`
	InputTokensDetails  *InputTokensDetails  `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *OutputTokensDetails `json:"output_tokens_details,omitempty"`
}

// InputTokensDetails breaks down input tokens.
type InputTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

// OutputTokensDetails breaks down output tokens.
type OutputTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// Stream event payloads. The SSE event name is repeated in Type.

// ResponseEvent carries a response envelope (response.created,
// response.completed).
type ResponseEvent struct {
	Type     string   `json:"type"`
	Response Response `json:"response"`
}

// TextDeltaEvent is response.output_text.delta or
// response.reasoning_text.delta.
type TextDeltaEvent struct {
	Type        string `json:"type"`
	OutputIndex int    `json:"output_index"`
	Delta       string `json:"delta"`
}

// FunctionCallArgumentsEvent is response.function_call_arguments.delta
// (Delta set) or response.function_call_arguments.done (Arguments set).
type FunctionCallArgumentsEvent struct {
	Type        string  `json:"type"`
	ItemID      string  `json:"item_id,omitempty"`
	Name        string  `json:"name,omitempty"`
	OutputIndex int     `json:"output_index"`
	Delta       *string `json:"delta,omitempty"`
	Arguments   *string `json:"arguments,omitempty"`
}

// ErrorEvent is the in-band stream error.
type ErrorEvent struct {
	Type  string      `json:"type"`
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error message.
type ErrorDetail struct {
	Message string `json:"message"`
}
