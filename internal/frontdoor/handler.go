// Package frontdoor exposes the translation core over HTTP. Every
// protocol-scoped route takes the protocol from the URL and renders its
// errors in that protocol's envelope.
package frontdoor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
	"github.com/tjfontaine/polyglot-translate/internal/provider/profile"
	"github.com/tjfontaine/polyglot-translate/internal/provider/textnorm"
	"github.com/tjfontaine/polyglot-translate/internal/server"
	"github.com/tjfontaine/polyglot-translate/internal/telemetry"
	"github.com/tjfontaine/polyglot-translate/internal/tokens"
	"github.com/tjfontaine/polyglot-translate/internal/translate"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 10 << 20

// Options configures a Handler.
type Options struct {
	Translator *translate.Translator
	Tokens     *tokens.Registry

	// DefaultProvider is applied by decode when the caller names none.
	DefaultProvider string

	Logger *slog.Logger
}

// Handler serves the translation routes. It holds no per-request state and
// is safe for concurrent use.
type Handler struct {
	translator      *translate.Translator
	tokens          *tokens.Registry
	defaultProvider string
	logger          *slog.Logger
	now             func() time.Time
}

// NewHandler builds a Handler, filling unset options with the builtin
// translator, the default token registry and slog.Default.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		translator:      opts.Translator,
		tokens:          opts.Tokens,
		defaultProvider: opts.DefaultProvider,
		logger:          opts.Logger,
		now:             time.Now,
	}
	if h.translator == nil {
		h.translator = translate.New(nil)
	}
	if h.tokens == nil {
		h.tokens = tokens.Default()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Routes mounts the handler on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/providers", h.handleListProviders)
		r.Get("/providers/{id}", h.handleGetProvider)
		r.Get("/providers/{id}/capabilities/{capability}", h.handleCapability)

		r.Post("/{protocol}/decode", h.handleDecode)
		r.Post("/{protocol}/encode", h.handleEncode)
		r.Post("/{protocol}/stream", h.handleStream)
		r.Post("/{protocol}/count_tokens", h.handleCountTokens)
	})
}

// DecodeResult is the body of a decode response.
type DecodeResult struct {
	Protocol    domain.APIType        `json:"protocol"`
	Provider    string                `json:"provider,omitempty"`
	Request     *domain.ChatRequest   `json:"request"`
	Adjustments []textnorm.Adjustment `json:"adjustments,omitempty"`

	// Target and Body are set when the caller asked for the request to be
	// re-encoded in another protocol.
	Target domain.APIType  `json:"target,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
}

func (h *Handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	api, ok := h.protocol(w, r)
	if !ok {
		return
	}
	ctx, span := h.startSpan(r.Context(), "translate.decode", api)
	defer span.End()

	body, ok := h.readBody(ctx, w, r, api)
	if !ok {
		return
	}

	providerID := r.URL.Query().Get("provider")
	if providerID == "" {
		providerID = h.defaultProvider
	}
	if providerID != "" && h.translator.Registry().Get(providerID) == nil {
		h.fail(ctx, w, span, api, domain.ErrInvalidRequest(fmt.Sprintf("unknown provider %q", providerID)).
			WithCode(domain.ErrorCodeUnknownProvider).
			WithParam("provider"))
		return
	}

	req, err := h.translator.Decode(api, body)
	if err != nil {
		h.fail(ctx, w, span, api, err)
		return
	}
	req, adjustments := h.translator.Prepare(req, providerID)

	server.AddLogField(ctx, "provider", providerID)
	server.AddLogField(ctx, "model", req.Model)
	span.SetAttributes(attribute.String("translate.provider", providerID), attribute.String("translate.model", req.Model))
	for _, adj := range adjustments {
		h.logger.DebugContext(ctx, "normalized parameter",
			slog.String("provider", providerID),
			slog.String("param", adj.Param),
			slog.String("action", string(adj.Action)))
	}

	result := DecodeResult{
		Protocol:    api,
		Provider:    providerID,
		Request:     req,
		Adjustments: adjustments,
	}

	if target := r.URL.Query().Get("target"); target != "" {
		to, err := domain.ParseAPIType(target)
		if err != nil {
			h.fail(ctx, w, span, api, domain.ErrInvalidRequest(err.Error()).
				WithCode(domain.ErrorCodeUnknownProtocol).
				WithParam("target"))
			return
		}
		c, err := h.translator.Codec(to)
		if err != nil {
			h.fail(ctx, w, span, api, err)
			return
		}
		out, err := c.EncodeRequest(req)
		if err != nil {
			h.fail(ctx, w, span, api, err)
			return
		}
		result.Target = to
		result.Body = out
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	api, ok := h.protocol(w, r)
	if !ok {
		return
	}
	ctx, span := h.startSpan(r.Context(), "translate.encode", api)
	defer span.End()

	body, ok := h.readBody(ctx, w, r, api)
	if !ok {
		return
	}

	var resp domain.ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		h.fail(ctx, w, span, api, domain.ErrInvalidRequest("invalid response body: "+err.Error()))
		return
	}
	server.AddLogField(ctx, "model", resp.Model)

	out, err := h.translator.EncodeResponse(api, &resp, h.encodeContext(ctx))
	if err != nil {
		h.fail(ctx, w, span, api, domain.ErrServer(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	api, ok := h.protocol(w, r)
	if !ok {
		return
	}
	ctx, span := h.startSpan(r.Context(), "translate.stream", api)
	defer span.End()

	body, ok := h.readBody(ctx, w, r, api)
	if !ok {
		return
	}

	events, err := domain.UnmarshalStreamEvents(body)
	if err != nil {
		h.fail(ctx, w, span, api, domain.ErrInvalidRequest(err.Error()))
		return
	}
	span.SetAttributes(attribute.Int("translate.events", len(events)))

	stream, err := h.translator.NewStream(w, api, h.encodeContext(ctx))
	if err != nil {
		h.fail(ctx, w, span, api, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	for _, ev := range events {
		if err := stream.Send(ev); err != nil {
			// Headers are gone; all that is left is to log and stop.
			server.AddError(ctx, err)
			span.RecordError(err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	if err := stream.Close(); err != nil {
		server.AddError(ctx, err)
		return
	}
	if flusher != nil {
		flusher.Flush()
	}
}

func (h *Handler) handleCountTokens(w http.ResponseWriter, r *http.Request) {
	api, ok := h.protocol(w, r)
	if !ok {
		return
	}
	ctx, span := h.startSpan(r.Context(), "translate.count_tokens", api)
	defer span.End()

	body, ok := h.readBody(ctx, w, r, api)
	if !ok {
		return
	}

	req, err := h.translator.Decode(api, body)
	if err != nil {
		h.fail(ctx, w, span, api, err)
		return
	}
	server.AddLogField(ctx, "model", req.Model)

	count, err := h.tokens.CountTokens(ctx, req)
	if err != nil {
		h.fail(ctx, w, span, api, domain.ErrServer(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, count)
}

func (h *Handler) handleListProviders(w http.ResponseWriter, r *http.Request) {
	model := r.URL.Query().Get("model")
	profiles := h.translator.Registry().Profiles()
	out := make([]profile.View, 0, len(profiles))
	for _, p := range profiles {
		view, _ := h.translator.DescribeProvider(p.ID, model)
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, map[string]any{"object": "list", "data": out})
}

func (h *Handler) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, ok := h.translator.DescribeProvider(id, r.URL.Query().Get("model"))
	if !ok {
		codec.WriteError(w, unknownProvider(id), domain.APITypeOpenAI)
		return
	}
	server.AddLogField(r.Context(), "provider", view.ID)
	writeJSON(w, http.StatusOK, view)
}

// CapabilityResult answers a single capability query.
type CapabilityResult struct {
	Provider   string            `json:"provider"`
	Capability domain.Capability `json:"capability"`
	Supported  bool              `json:"supported"`
}

func (h *Handler) handleCapability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.translator.Registry().Get(id)
	if p == nil {
		codec.WriteError(w, unknownProvider(id), domain.APITypeOpenAI)
		return
	}
	c := domain.NormalizeCapability(chi.URLParam(r, "capability"))
	writeJSON(w, http.StatusOK, CapabilityResult{
		Provider:   p.ID,
		Capability: c,
		Supported:  h.translator.Resolver().Supports(p.ID, c),
	})
}

func unknownProvider(id string) error {
	return domain.ErrNotFound(fmt.Sprintf("unknown provider %q", id)).WithCode(domain.ErrorCodeUnknownProvider)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"providers": h.translator.Registry().Len(),
	})
}

// protocol resolves the {protocol} URL parameter. Unknown protocols get a
// 404 in the OpenAI envelope since there is no better one to pick.
func (h *Handler) protocol(w http.ResponseWriter, r *http.Request) (domain.APIType, bool) {
	api, err := domain.ParseAPIType(chi.URLParam(r, "protocol"))
	if err != nil {
		codec.WriteError(w, domain.ErrNotFound(err.Error()).WithCode(domain.ErrorCodeUnknownProtocol), domain.APITypeOpenAI)
		return "", false
	}
	server.AddLogField(r.Context(), "protocol", string(api))
	return api, true
}

func (h *Handler) readBody(ctx context.Context, w http.ResponseWriter, r *http.Request, api domain.APIType) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = domain.ErrInvalidRequest(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)).WithStatusCode(http.StatusRequestEntityTooLarge)
		} else {
			err = domain.ErrInvalidRequest("failed to read request body")
		}
		server.AddError(ctx, err)
		codec.WriteError(w, err, api)
		return nil, false
	}
	return body, true
}

func (h *Handler) encodeContext(ctx context.Context) codec.EncodeContext {
	return codec.EncodeContext{
		RequestID: server.GetRequestID(ctx),
		Created:   h.now().Unix(),
	}
}

func (h *Handler) startSpan(ctx context.Context, name string, api domain.APIType) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name, trace.WithAttributes(attribute.String("translate.protocol", string(api))))
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, span trace.Span, api domain.APIType, err error) {
	server.AddError(ctx, err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	codec.WriteError(w, err, api)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
