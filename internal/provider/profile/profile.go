// Package profile holds per-provider policy: which adapter-backed
// capabilities a provider has, which request parameters it accepts, and the
// hints used to normalize text requests for it.
//
// Profiles are collected into a Registry once at startup. A Registry is
// never mutated after construction and is safe for concurrent use.
package profile

import (
	"sort"
	"strings"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// Profile is the policy for one provider.
type Profile struct {
	// ID is the canonical provider id (lowercase).
	ID string

	// Aliases are other ids that resolve to this profile.
	Aliases []string

	// TextOnly providers never support an adapter-backed capability unless
	// an override says otherwise.
	TextOnly bool

	// CompatAdapter marks providers served through the generic
	// OpenAI-compatible adapter.
	CompatAdapter bool

	// AdapterBackedOverrides are explicit per-capability answers. When a
	// capability is present here it is authoritative.
	AdapterBackedOverrides map[domain.Capability]bool

	Text TextPolicy
}

// TextPolicy is the text-generation part of a profile.
type TextPolicy struct {
	ParamPolicy ParamPolicy
	Normalize   Normalize
}

// ParamPolicy lists dotted parameter-path prefixes the provider explicitly
// accepts or rejects. Order is preserved; unsupported entries win.
type ParamPolicy struct {
	SupportedParams   []string
	UnsupportedParams []string
}

// Normalize carries text normalization hints. Nil pointers mean "no policy".
type Normalize struct {
	MaxTemperature              *float64
	DefaultMaxTokensWhenMissing *int
	ServiceTierAliases          map[string]string
	ReasoningEffortFallback     EffortLadder
}

// EffortLadder returns the reasoning-effort levels, weakest first, that a
// model accepts. An empty result means the model takes no explicit effort.
type EffortLadder func(model string) []domain.ReasoningEffort

// StaticLadder returns a ladder that ignores the model id.
func StaticLadder(levels ...domain.ReasoningEffort) EffortLadder {
	return func(string) []domain.ReasoningEffort {
		return append([]domain.ReasoningEffort{}, levels...)
	}
}

// EffortRule selects Ladder when the lowercased model id contains Contains.
type EffortRule struct {
	Contains string                   `koanf:"contains" json:"contains" yaml:"contains"`
	Ladder   []domain.ReasoningEffort `koanf:"ladder" json:"ladder" yaml:"ladder"`
}

// RuleLadder evaluates rules top to bottom against the lowercased model id;
// the first match wins and def applies when nothing matches. More specific
// model families must be listed before the general ones they contain.
func RuleLadder(def []domain.ReasoningEffort, rules ...EffortRule) EffortLadder {
	return func(model string) []domain.ReasoningEffort {
		model = strings.ToLower(model)
		for _, rule := range rules {
			if strings.Contains(model, strings.ToLower(rule.Contains)) {
				return append([]domain.ReasoningEffort{}, rule.Ladder...)
			}
		}
		return append([]domain.ReasoningEffort{}, def...)
	}
}

// NormalizeID trims and lowercases a provider id.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// clone deep-copies p so the registry never shares mutable state with the
// caller that built it.
func (p Profile) clone() Profile {
	out := p
	out.ID = NormalizeID(p.ID)
	out.Aliases = make([]string, 0, len(p.Aliases))
	for _, a := range p.Aliases {
		out.Aliases = append(out.Aliases, NormalizeID(a))
	}
	if p.AdapterBackedOverrides != nil {
		out.AdapterBackedOverrides = make(map[domain.Capability]bool, len(p.AdapterBackedOverrides))
		for k, v := range p.AdapterBackedOverrides {
			out.AdapterBackedOverrides[domain.NormalizeCapability(string(k))] = v
		}
	}
	out.Text.ParamPolicy.SupportedParams = append([]string(nil), p.Text.ParamPolicy.SupportedParams...)
	out.Text.ParamPolicy.UnsupportedParams = append([]string(nil), p.Text.ParamPolicy.UnsupportedParams...)
	if p.Text.Normalize.ServiceTierAliases != nil {
		out.Text.Normalize.ServiceTierAliases = make(map[string]string, len(p.Text.Normalize.ServiceTierAliases))
		for k, v := range p.Text.Normalize.ServiceTierAliases {
			out.Text.Normalize.ServiceTierAliases[strings.ToLower(k)] = v
		}
	}
	if p.Text.Normalize.MaxTemperature != nil {
		v := *p.Text.Normalize.MaxTemperature
		out.Text.Normalize.MaxTemperature = &v
	}
	if p.Text.Normalize.DefaultMaxTokensWhenMissing != nil {
		v := *p.Text.Normalize.DefaultMaxTokensWhenMissing
		out.Text.Normalize.DefaultMaxTokensWhenMissing = &v
	}
	return out
}

// View is the serializable form of a profile, used by the HTTP and CLI
// surfaces. The reasoning ladder is shown as evaluated for Model.
type View struct {
	ID                 string                   `json:"id" yaml:"id"`
	Aliases            []string                 `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	TextOnly           bool                     `json:"text_only" yaml:"text_only"`
	CompatAdapter      bool                     `json:"compat_adapter" yaml:"compat_adapter"`
	Overrides          map[string]bool          `json:"adapter_backed_overrides,omitempty" yaml:"adapter_backed_overrides,omitempty"`
	SupportedParams    []string                 `json:"supported_params,omitempty" yaml:"supported_params,omitempty"`
	UnsupportedParams  []string                 `json:"unsupported_params,omitempty" yaml:"unsupported_params,omitempty"`
	MaxTemperature     *float64                 `json:"max_temperature,omitempty" yaml:"max_temperature,omitempty"`
	DefaultMaxTokens   *int                     `json:"default_max_tokens,omitempty" yaml:"default_max_tokens,omitempty"`
	ServiceTierAliases map[string]string        `json:"service_tier_aliases,omitempty" yaml:"service_tier_aliases,omitempty"`
	Model              string                   `json:"model,omitempty" yaml:"model,omitempty"`
	ReasoningLadder    []domain.ReasoningEffort `json:"reasoning_ladder,omitempty" yaml:"reasoning_ladder,omitempty"`
	Capabilities       map[string]bool          `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

// View renders the profile for display. The view shares no memory with
// the profile.
func (p *Profile) View(model string) View {
	v := View{
		ID:                p.ID,
		Aliases:           append([]string(nil), p.Aliases...),
		TextOnly:          p.TextOnly,
		CompatAdapter:     p.CompatAdapter,
		SupportedParams:   append([]string(nil), p.Text.ParamPolicy.SupportedParams...),
		UnsupportedParams: append([]string(nil), p.Text.ParamPolicy.UnsupportedParams...),
		Model:             model,
	}
	sort.Strings(v.Aliases)
	if t := p.Text.Normalize.MaxTemperature; t != nil {
		ceiling := *t
		v.MaxTemperature = &ceiling
	}
	if n := p.Text.Normalize.DefaultMaxTokensWhenMissing; n != nil {
		def := *n
		v.DefaultMaxTokens = &def
	}
	if len(p.Text.Normalize.ServiceTierAliases) > 0 {
		v.ServiceTierAliases = make(map[string]string, len(p.Text.Normalize.ServiceTierAliases))
		for k, val := range p.Text.Normalize.ServiceTierAliases {
			v.ServiceTierAliases[k] = val
		}
	}
	if len(p.AdapterBackedOverrides) > 0 {
		v.Overrides = make(map[string]bool, len(p.AdapterBackedOverrides))
		for k, val := range p.AdapterBackedOverrides {
			v.Overrides[string(k)] = val
		}
	}
	if p.Text.Normalize.ReasoningEffortFallback != nil {
		if ladder := p.Text.Normalize.ReasoningEffortFallback(model); ladder != nil {
			v.ReasoningLadder = append([]domain.ReasoningEffort{}, ladder...)
		}
	}
	return v
}
