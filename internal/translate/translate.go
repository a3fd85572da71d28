// Package translate is the entry point to the translation core. A Translator
// dispatches each protocol to its codec and applies per-provider text
// normalization to decoded requests.
package translate

import (
	"fmt"
	"io"

	"github.com/tjfontaine/polyglot-translate/internal/codec"
	anthropiccodec "github.com/tjfontaine/polyglot-translate/internal/codec/anthropic"
	openaicodec "github.com/tjfontaine/polyglot-translate/internal/codec/openai"
	responsescodec "github.com/tjfontaine/polyglot-translate/internal/codec/responses"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
	"github.com/tjfontaine/polyglot-translate/internal/provider/capability"
	"github.com/tjfontaine/polyglot-translate/internal/provider/profile"
	"github.com/tjfontaine/polyglot-translate/internal/provider/textnorm"
)

// Translator converts between the supported protocols and the canonical
// model. It holds no mutable state and is safe for concurrent use.
type Translator struct {
	codecs   map[domain.APIType]codec.Codec
	registry *profile.Registry
	resolver *capability.Resolver
	norm     *textnorm.Layer
}

// New returns a Translator backed by reg. A nil registry means the
// built-in profiles.
func New(reg *profile.Registry) *Translator {
	if reg == nil {
		reg = profile.Default()
	}
	t := &Translator{
		codecs:   make(map[domain.APIType]codec.Codec),
		registry: reg,
		resolver: capability.NewResolver(reg),
		norm:     textnorm.New(reg),
	}
	for _, c := range []codec.Codec{openaicodec.New(), responsescodec.New(), anthropiccodec.New()} {
		t.codecs[c.Name()] = c
	}
	return t
}

// Registry returns the profile registry the translator was built with.
func (t *Translator) Registry() *profile.Registry { return t.registry }

// Resolver returns the capability resolver over the translator's registry.
func (t *Translator) Resolver() *capability.Resolver { return t.resolver }

// Normalizer returns the text normalization layer.
func (t *Translator) Normalizer() *textnorm.Layer { return t.norm }

// DescribeProvider renders a provider profile for model together with its
// adapter-backed capability matrix. ok is false for an unknown provider.
func (t *Translator) DescribeProvider(id, model string) (view profile.View, ok bool) {
	p := t.registry.Get(id)
	if p == nil {
		return profile.View{}, false
	}
	view = p.View(model)
	matrix := t.resolver.Matrix(p.ID)
	view.Capabilities = make(map[string]bool, len(matrix))
	for c, supported := range matrix {
		view.Capabilities[string(c)] = supported
	}
	return view, true
}

// Codec returns the codec for a protocol.
func (t *Translator) Codec(api domain.APIType) (codec.Codec, error) {
	c, ok := t.codecs[api]
	if !ok {
		return nil, domain.ErrNotFound(fmt.Sprintf("unknown protocol %q", api))
	}
	return c, nil
}

// Decode converts a protocol request body to a canonical request.
func (t *Translator) Decode(api domain.APIType, body []byte) (*domain.ChatRequest, error) {
	c, err := t.Codec(api)
	if err != nil {
		return nil, err
	}
	return c.DecodeRequest(body)
}

// Prepare normalizes a request for providerID. An empty provider id leaves
// the request untouched.
func (t *Translator) Prepare(req *domain.ChatRequest, providerID string) (*domain.ChatRequest, []textnorm.Adjustment) {
	if providerID == "" {
		return req, nil
	}
	return t.norm.Prepare(req, providerID)
}

// Result is a request translated from one protocol to another.
type Result struct {
	Request     *domain.ChatRequest
	Adjustments []textnorm.Adjustment
	Body        []byte
}

// Translate decodes body as protocol from, prepares it for providerID and
// renders it as a protocol to request.
func (t *Translator) Translate(from, to domain.APIType, body []byte, providerID string) (*Result, error) {
	req, err := t.Decode(from, body)
	if err != nil {
		return nil, err
	}
	req, adj := t.Prepare(req, providerID)

	target, err := t.Codec(to)
	if err != nil {
		return nil, err
	}
	out, err := target.EncodeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", to, err)
	}
	return &Result{Request: req, Adjustments: adj, Body: out}, nil
}

// EncodeResponse renders a canonical response in protocol api.
func (t *Translator) EncodeResponse(api domain.APIType, resp *domain.ChatResponse, ctx codec.EncodeContext) ([]byte, error) {
	c, err := t.Codec(api)
	if err != nil {
		return nil, err
	}
	return c.EncodeResponse(resp, ctx)
}

// EncodeStream writes events to w as server-sent events, one frame per
// event in order. OpenAI Chat streams end with the [DONE] sentinel.
func (t *Translator) EncodeStream(w io.Writer, api domain.APIType, events []domain.StreamEvent, ctx codec.StreamContext) error {
	s, err := t.NewStream(w, api, ctx)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if err := s.Send(ev); err != nil {
			return err
		}
	}
	return s.Close()
}

// Stream encodes a live event stream one event at a time.
type Stream struct {
	w     io.Writer
	codec codec.Codec
	ctx   codec.StreamContext
}

// NewStream starts an encoded stream on w.
func (t *Translator) NewStream(w io.Writer, api domain.APIType, ctx codec.StreamContext) (*Stream, error) {
	c, err := t.Codec(api)
	if err != nil {
		return nil, err
	}
	return &Stream{w: w, codec: c, ctx: ctx}, nil
}

// Send writes the frame for ev.
func (s *Stream) Send(ev domain.StreamEvent) error {
	f := s.codec.EncodeStreamEvent(ev, s.ctx)
	if f == nil {
		return nil
	}
	return codec.WriteSSE(s.w, f)
}

// Close writes the protocol's stream terminator, if it has one.
func (s *Stream) Close() error {
	if s.codec.Name() == domain.APITypeOpenAI {
		return codec.WriteDone(s.w)
	}
	return nil
}
