// Package capability answers whether a provider can be routed a given
// adapter-backed capability.
package capability

import (
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
	"github.com/tjfontaine/polyglot-translate/internal/provider/profile"
)

// Providers named by the default heuristics.
const (
	googleAIStudio = "google-ai-studio"
	elevenLabs     = "elevenlabs"
	mistral        = "mistral"
	suno           = "suno"
)

// Resolver evaluates capability support against a profile registry.
type Resolver struct {
	registry *profile.Registry
}

// NewResolver returns a resolver over reg.
func NewResolver(reg *profile.Registry) *Resolver {
	return &Resolver{registry: reg}
}

// SupportsAdapterBackedCapability reports whether providerID may serve
// capability. An explicit profile override always wins; otherwise text-only
// providers support nothing and capability-specific defaults apply. Unknown
// providers and non adapter-backed capabilities report false.
func (r *Resolver) SupportsAdapterBackedCapability(providerID string, capability domain.Capability) bool {
	p := r.registry.Get(providerID)
	if p == nil {
		return false
	}
	c := domain.NormalizeCapability(string(capability))

	if supported, ok := p.AdapterBackedOverrides[c]; ok {
		return supported
	}
	if p.TextOnly {
		return false
	}
	return defaultSupport(p, c)
}

func defaultSupport(p *profile.Profile, c domain.Capability) bool {
	compatNotGoogle := p.CompatAdapter && p.ID != googleAIStudio

	switch c {
	case domain.CapabilityImageGenerate:
		return p.CompatAdapter
	case domain.CapabilityImageEdit, domain.CapabilityAudioTranslations:
		return compatNotGoogle
	case domain.CapabilityAudioSpeech, domain.CapabilityAudioTranscription:
		return compatNotGoogle || p.ID == elevenLabs
	case domain.CapabilityOCR:
		return p.ID == mistral
	case domain.CapabilityMusicGenerate:
		return p.ID == suno || p.ID == elevenLabs
	default:
		return false
	}
}

// Supports extends SupportsAdapterBackedCapability to text generation,
// which every known provider offers.
func (r *Resolver) Supports(providerID string, capability domain.Capability) bool {
	c := domain.NormalizeCapability(string(capability))
	if c == domain.CapabilityTextGenerate {
		return r.registry.Get(providerID) != nil
	}
	return r.SupportsAdapterBackedCapability(providerID, c)
}

// Require is Supports for callers that prefer an error value. The error
// wraps domain.ErrCapabilityDenied and marks the provider as
// routing-ineligible; it is not a fault.
func (r *Resolver) Require(providerID string, capability domain.Capability) error {
	if r.Supports(providerID, capability) {
		return nil
	}
	return &domain.CapabilityDeniedError{
		Provider:   profile.NormalizeID(providerID),
		Capability: domain.NormalizeCapability(string(capability)),
	}
}

// Matrix evaluates every adapter-backed capability for providerID.
func (r *Resolver) Matrix(providerID string) map[domain.Capability]bool {
	out := make(map[domain.Capability]bool)
	for _, c := range domain.AdapterBackedCapabilities() {
		out[c] = r.SupportsAdapterBackedCapability(providerID, c)
	}
	return out
}

// Eligible filters providerIDs down to those that support capability,
// preserving order.
func (r *Resolver) Eligible(capability domain.Capability, providerIDs ...string) []string {
	var out []string
	for _, id := range providerIDs {
		if r.Supports(id, capability) {
			out = append(out, id)
		}
	}
	return out
}
