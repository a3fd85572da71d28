// Package domain holds the protocol-neutral request, response and stream
// event model that every codec decodes into and encodes from.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIType identifies a client-facing wire protocol.
type APIType string

const (
	APITypeOpenAI    APIType = "openai"    // OpenAI Chat Completions
	APITypeResponses APIType = "responses" // OpenAI Responses API
	APITypeAnthropic APIType = "anthropic" // Anthropic Messages
)

// APITypes lists every supported protocol in a stable order.
func APITypes() []APIType {
	return []APIType{APITypeOpenAI, APITypeResponses, APITypeAnthropic}
}

// ParseAPIType resolves a protocol name, accepting the long dotted forms as
// well as the short names used in URLs.
func ParseAPIType(s string) (APIType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai", "openai.chat", "openai.chat.completions", "chat", "chat.completions":
		return APITypeOpenAI, nil
	case "responses", "openai.responses":
		return APITypeResponses, nil
	case "anthropic", "anthropic.messages", "messages":
		return APITypeAnthropic, nil
	default:
		return "", fmt.Errorf("unknown protocol %q", s)
	}
}

// Role is the author of a message. There is exactly one system-equivalent
// role; "developer" is folded into RoleSystem by the decoders.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single conversation turn.
type Message struct {
	Role Role

	// Content is never nil on a decoded message. An empty slice means
	// "no content".
	Content []ContentPart

	// ToolCalls is only set on assistant messages.
	ToolCalls []ToolCall

	// ToolResults is only set on tool messages.
	ToolResults []ToolResult
}

// Text joins the message's text parts.
func (m Message) Text() string {
	var b strings.Builder
	for _, part := range m.Content {
		if p, ok := part.(TextPart); ok {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// ReasoningTexts returns the reasoning parts in order.
func (m Message) ReasoningTexts() []string {
	var out []string
	for _, part := range m.Content {
		if p, ok := part.(ReasoningPart); ok {
			out = append(out, p.Text)
		}
	}
	return out
}

// Images returns the image parts in order.
func (m Message) Images() []ImagePart {
	var out []ImagePart
	for _, part := range m.Content {
		if p, ok := part.(ImagePart); ok {
			out = append(out, p)
		}
	}
	return out
}

// ToolCall is an assistant's request to run a tool. Arguments is the JSON
// string exactly as the model produced it; it is never re-parsed in the IR.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult carries the output of a tool call back to the model.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
}

// Tool describes a function the model may call.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"` // JSON Schema
}

// ToolChoiceMode selects how the model may use tools.
type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
	ToolChoiceTool     ToolChoiceMode = "tool" // force the tool named in ToolChoice.Name
)

// ToolChoice is the caller's tool-use directive.
type ToolChoice struct {
	Mode ToolChoiceMode `json:"mode"`
	Name string         `json:"name,omitempty"`
}

// ReasoningEffort is a reasoning level, ordered from weakest to strongest.
type ReasoningEffort string

const (
	EffortNone    ReasoningEffort = "none"
	EffortMinimal ReasoningEffort = "minimal"
	EffortLow     ReasoningEffort = "low"
	EffortMedium  ReasoningEffort = "medium"
	EffortHigh    ReasoningEffort = "high"
	EffortXHigh   ReasoningEffort = "xhigh"
)

var effortRank = map[ReasoningEffort]int{
	EffortNone:    0,
	EffortMinimal: 1,
	EffortLow:     2,
	EffortMedium:  3,
	EffortHigh:    4,
	EffortXHigh:   5,
}

// Rank orders efforts; unknown values rank -1.
func (e ReasoningEffort) Rank() int {
	if r, ok := effortRank[e]; ok {
		return r
	}
	return -1
}

// Reasoning configures extended thinking.
type Reasoning struct {
	Effort    ReasoningEffort `json:"effort,omitempty"`
	Summary   string          `json:"summary,omitempty"`
	Enabled   *bool           `json:"enabled,omitempty"`
	MaxTokens *int            `json:"max_tokens,omitempty"`
}

// ResponseFormat constrains the shape of model output.
type ResponseFormat struct {
	Type   string          `json:"type"` // "text", "json_object", "json_schema"
	Name   string          `json:"name,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
	Strict *bool           `json:"strict,omitempty"`
}

// StreamOptions tunes a streamed response.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage,omitempty"`
}

// RoutingHints are caller preferences about which provider serves the
// request, sent as the "provider" object on OpenAI-style requests. They are
// carried, not acted on, by the translation core.
type RoutingHints struct {
	Order  []string `json:"order,omitempty"`
	Only   []string `json:"only,omitempty"`
	Ignore []string `json:"ignore,omitempty"`
}

// ChatRequest is the superset of request features across protocols.
type ChatRequest struct {
	Model         string         `json:"model"`
	Messages      []Message      `json:"messages"`
	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *StreamOptions `json:"stream_options,omitempty"`

	// Generation parameters
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	TopK             *int     `json:"top_k,omitempty"`
	Seed             *int64   `json:"seed,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Stop             []string `json:"stop,omitempty"`
	N                *int     `json:"n,omitempty"`

	LogitBias   map[string]int `json:"logit_bias,omitempty"`
	Logprobs    *bool          `json:"logprobs,omitempty"`
	TopLogprobs *int           `json:"top_logprobs,omitempty"`

	// Tool calling
	Tools             []Tool      `json:"tools,omitempty"`
	ToolChoice        *ToolChoice `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool       `json:"parallel_tool_calls,omitempty"`
	MaxToolCalls      *int        `json:"max_tool_calls,omitempty"`

	Reasoning      *Reasoning      `json:"reasoning,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	ServiceTier    string          `json:"service_tier,omitempty"`

	User     string            `json:"user,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Routing  *RoutingHints     `json:"routing,omitempty"`
}

// Clone returns a copy that can be modified without touching the original.
// Messages and their parts are treated as immutable and shared.
func (r *ChatRequest) Clone() *ChatRequest {
	c := *r
	c.Messages = append([]Message(nil), r.Messages...)
	c.Stop = append([]string(nil), r.Stop...)
	c.Tools = append([]Tool(nil), r.Tools...)
	if r.Reasoning != nil {
		reasoning := *r.Reasoning
		c.Reasoning = &reasoning
	}
	if r.Metadata != nil {
		c.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			c.Metadata[k] = v
		}
	}
	if r.LogitBias != nil {
		c.LogitBias = make(map[string]int, len(r.LogitBias))
		for k, v := range r.LogitBias {
			c.LogitBias[k] = v
		}
	}
	if r.Routing != nil {
		routing := RoutingHints{
			Order:  append([]string(nil), r.Routing.Order...),
			Only:   append([]string(nil), r.Routing.Only...),
			Ignore: append([]string(nil), r.Routing.Ignore...),
		}
		c.Routing = &routing
	}
	return &c
}

// ChatResponse is a complete, non-streamed model response.
type ChatResponse struct {
	// ID is the gateway-assigned request id ("req_..."). Every protocol
	// surfaces it as the primary id.
	ID string `json:"id"`

	// NativeID is the upstream provider's id, surfaced as a secondary field.
	NativeID string `json:"native_id,omitempty"`

	Created  int64    `json:"created"`
	Model    string   `json:"model"`
	Provider string   `json:"provider,omitempty"`
	Choices  []Choice `json:"choices"`
	Usage    *Usage   `json:"usage,omitempty"`

	ServiceTier       string `json:"service_tier,omitempty"`
	SystemFingerprint string `json:"system_fingerprint,omitempty"`
}

// Choice is one completion alternative.
type Choice struct {
	Index        int          `json:"index"`
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`

	// StopSequence is the literal stop string that ended generation, if any.
	StopSequence *string `json:"stop_sequence,omitempty"`
}

// Usage is token accounting for one response.
type Usage struct {
	InputTokens       int  `json:"input_tokens"`
	OutputTokens      int  `json:"output_tokens"`
	TotalTokens       int  `json:"total_tokens"`
	ReasoningTokens   *int `json:"reasoning_tokens,omitempty"`
	CachedInputTokens *int `json:"cached_input_tokens,omitempty"`
}

// Normalize fills TotalTokens when the provider left it out.
func (u Usage) Normalize() Usage {
	if u.TotalTokens == 0 {
		u.TotalTokens = u.InputTokens + u.OutputTokens
	}
	return u
}
