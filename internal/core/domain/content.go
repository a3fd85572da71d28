package domain

import (
	"encoding/json"
	"fmt"
)

// PartType tags a ContentPart variant.
type PartType string

const (
	PartTypeText      PartType = "text"
	PartTypeReasoning PartType = "reasoning_text"
	PartTypeImage     PartType = "image"
	PartTypeAudio     PartType = "audio"
)

// SourceKind says whether media is referenced by URL or carried inline.
type SourceKind string

const (
	SourceURL  SourceKind = "url"
	SourceData SourceKind = "data"
)

// ContentPart is one element of a message's ordered content. The set of
// implementations is closed: TextPart, ReasoningPart, ImagePart and AudioPart.
type ContentPart interface {
	Type() PartType
	contentPart()
}

// TextPart is plain text.
type TextPart struct {
	Text string
}

// ReasoningPart is model reasoning ("thinking") text.
type ReasoningPart struct {
	Text      string
	Signature string // Anthropic thinking signature, when present
}

// ImagePart references an image. For SourceData, Data holds the base64
// payload and MimeType its media type; for SourceURL, Data holds the URL.
type ImagePart struct {
	Source   SourceKind
	Data     string
	MimeType string
	Detail   string // "auto", "low", "high"
}

// AudioPart carries audio input.
type AudioPart struct {
	Source SourceKind
	Data   string
	Format string // "wav", "mp3", ...
}

func (TextPart) Type() PartType      { return PartTypeText }
func (ReasoningPart) Type() PartType { return PartTypeReasoning }
func (ImagePart) Type() PartType     { return PartTypeImage }
func (AudioPart) Type() PartType     { return PartTypeAudio }

func (TextPart) contentPart()      {}
func (ReasoningPart) contentPart() {}
func (ImagePart) contentPart()     {}
func (AudioPart) contentPart()     {}

// Text returns a single-part content slice.
func Text(s string) []ContentPart {
	return []ContentPart{TextPart{Text: s}}
}

// partJSON is the flat JSON form of every ContentPart variant.
type partJSON struct {
	Type      PartType   `json:"type"`
	Text      string     `json:"text,omitempty"`
	Signature string     `json:"signature,omitempty"`
	Source    SourceKind `json:"source,omitempty"`
	Data      string     `json:"data,omitempty"`
	MimeType  string     `json:"mime_type,omitempty"`
	Detail    string     `json:"detail,omitempty"`
	Format    string     `json:"format,omitempty"`
}

func toPartJSON(part ContentPart) partJSON {
	switch p := part.(type) {
	case TextPart:
		return partJSON{Type: PartTypeText, Text: p.Text}
	case ReasoningPart:
		return partJSON{Type: PartTypeReasoning, Text: p.Text, Signature: p.Signature}
	case ImagePart:
		return partJSON{Type: PartTypeImage, Source: p.Source, Data: p.Data, MimeType: p.MimeType, Detail: p.Detail}
	case AudioPart:
		return partJSON{Type: PartTypeAudio, Source: p.Source, Data: p.Data, Format: p.Format}
	}
	return partJSON{}
}

func (p partJSON) part() (ContentPart, error) {
	switch p.Type {
	case PartTypeText:
		return TextPart{Text: p.Text}, nil
	case PartTypeReasoning:
		return ReasoningPart{Text: p.Text, Signature: p.Signature}, nil
	case PartTypeImage:
		return ImagePart{Source: p.Source, Data: p.Data, MimeType: p.MimeType, Detail: p.Detail}, nil
	case PartTypeAudio:
		return AudioPart{Source: p.Source, Data: p.Data, Format: p.Format}, nil
	default:
		return nil, fmt.Errorf("unknown content part type %q", p.Type)
	}
}

type messageJSON struct {
	Role        Role         `json:"role"`
	Content     []partJSON   `json:"content"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// MarshalJSON implements json.Marshaler. Content is always an array.
func (m Message) MarshalJSON() ([]byte, error) {
	wire := messageJSON{
		Role:        m.Role,
		Content:     make([]partJSON, 0, len(m.Content)),
		ToolCalls:   m.ToolCalls,
		ToolResults: m.ToolResults,
	}
	for _, part := range m.Content {
		wire.Content = append(wire.Content, toPartJSON(part))
	}
	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire messageJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	content := make([]ContentPart, 0, len(wire.Content))
	for i, p := range wire.Content {
		part, err := p.part()
		if err != nil {
			return fmt.Errorf("content[%d]: %w", i, err)
		}
		content = append(content, part)
	}
	*m = Message{
		Role:        wire.Role,
		Content:     content,
		ToolCalls:   wire.ToolCalls,
		ToolResults: wire.ToolResults,
	}
	return nil
}
