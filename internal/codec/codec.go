// Package codec defines the protocol codec contract and the helpers shared
// by the per-protocol codecs: SSE framing, error envelopes and media URIs.
package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// Codec translates one wire protocol to and from the canonical model.
// Implementations are stateless and safe for concurrent use.
type Codec interface {
	// Name returns the protocol the codec speaks.
	Name() domain.APIType

	// DecodeRequest converts a protocol request body to a canonical
	// request. Malformed message shapes fail with *domain.DecodeError.
	DecodeRequest(data []byte) (*domain.ChatRequest, error)

	// EncodeRequest renders a canonical request in the protocol's request
	// shape, for handing it to a provider of that family.
	EncodeRequest(req *domain.ChatRequest) ([]byte, error)

	// EncodeResponse renders a canonical response. It applies defaults
	// rather than failing on well-formed input.
	EncodeResponse(resp *domain.ChatResponse, ctx EncodeContext) ([]byte, error)

	// EncodeStreamEvent translates one canonical event into one frame.
	EncodeStreamEvent(ev domain.StreamEvent, ctx StreamContext) *Frame
}

// EncodeContext carries request-scoped values the encoders surface.
type EncodeContext struct {
	// RequestID is the gateway id rendered as the primary id. When empty
	// the response's own ID is used.
	RequestID string

	// Model overrides the response model when set.
	Model string

	// Created overrides the response timestamp when non-zero.
	Created int64
}

// StreamContext is the per-stream context given to stream encoders.
type StreamContext = EncodeContext

// PrimaryID returns the id a response is rendered under.
func (c EncodeContext) PrimaryID(resp *domain.ChatResponse) string {
	if c.RequestID != "" {
		return c.RequestID
	}
	return resp.ID
}

// NativeID returns the secondary upstream id, or "" when it would repeat
// the primary id.
func (c EncodeContext) NativeID(resp *domain.ChatResponse) string {
	if resp.NativeID == c.PrimaryID(resp) {
		return ""
	}
	return resp.NativeID
}

// ModelFor returns the model a response is rendered with.
func (c EncodeContext) ModelFor(resp *domain.ChatResponse) string {
	if c.Model != "" {
		return c.Model
	}
	return resp.Model
}

// CreatedFor returns the creation timestamp a response is rendered with.
func (c EncodeContext) CreatedFor(resp *domain.ChatResponse) int64 {
	if c.Created != 0 {
		return c.Created
	}
	return resp.Created
}

// Frame is one encoded stream event. Event is the SSE event name; it is
// empty for protocols that infer the frame type from the payload.
type Frame struct {
	Event string
	Data  any
}

// MarshalData renders the frame payload.
func (f *Frame) MarshalData() ([]byte, error) {
	if raw, ok := f.Data.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(f.Data)
}

// WriteSSE writes one frame in server-sent event format.
func WriteSSE(w io.Writer, f *Frame) error {
	data, err := f.MarshalData()
	if err != nil {
		return fmt.Errorf("marshal %q frame: %w", f.Event, err)
	}
	if f.Event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", f.Event); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// WriteDone writes the OpenAI-style stream terminator.
func WriteDone(w io.Writer) error {
	_, err := io.WriteString(w, "data: [DONE]\n\n")
	return err
}

// Snapshot returns a snapshot payload as frame data, substituting an empty
// object for an absent payload.
func Snapshot(payload json.RawMessage) json.RawMessage {
	if len(payload) == 0 {
		return json.RawMessage("{}")
	}
	return payload
}

// StreamErrorMessage returns the message of a stream error event.
func StreamErrorMessage(e domain.ErrorEvent) string {
	if e.Message == "" {
		return "stream_error"
	}
	return e.Message
}
