// Package responses provides a codec for converting between the OpenAI
// Responses format and canonical format.
package responses

import (
	"encoding/json"

	"github.com/tjfontaine/polyglot-translate/internal/api/responses"
	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// Codec implements codec.Codec for the Responses API.
type Codec struct{}

var _ codec.Codec = (*Codec)(nil)

// New creates a new Responses codec.
func New() *Codec {
	return &Codec{}
}

// Name returns the protocol this codec speaks.
func (c *Codec) Name() domain.APIType {
	return protocol
}

// DecodeRequest converts Responses request JSON to canonical format.
func (c *Codec) DecodeRequest(data []byte) (*domain.ChatRequest, error) {
	var apiReq responses.Request
	if err := json.Unmarshal(data, &apiReq); err != nil {
		return nil, codec.SyntaxError(protocol, err)
	}
	return DecodeRequest(&apiReq)
}

// EncodeRequest converts a canonical request to Responses request JSON.
func (c *Codec) EncodeRequest(req *domain.ChatRequest) ([]byte, error) {
	return json.Marshal(EncodeRequest(req))
}

// EncodeResponse converts a canonical response to a Responses object.
func (c *Codec) EncodeResponse(resp *domain.ChatResponse, ctx codec.EncodeContext) ([]byte, error) {
	return json.Marshal(EncodeResponse(resp, ctx))
}

// EncodeStreamEvent converts a canonical event to a Responses stream frame.
func (c *Codec) EncodeStreamEvent(ev domain.StreamEvent, ctx codec.StreamContext) *codec.Frame {
	return EncodeStreamEvent(ev, ctx)
}
