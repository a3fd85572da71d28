// Package textnorm resolves per-provider normalization hints for text
// requests: temperature ceilings, default token limits, reasoning-effort
// ladders, service-tier aliases and parameter support.
package textnorm

import (
	"strings"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
	"github.com/tjfontaine/polyglot-translate/internal/provider/profile"
)

// Layer answers normalization questions against a profile registry.
type Layer struct {
	registry *profile.Registry
}

// New returns a Layer over reg.
func New(reg *profile.Registry) *Layer {
	return &Layer{registry: reg}
}

// MaxTemperature returns the provider's temperature ceiling.
func (l *Layer) MaxTemperature(providerID string) (float64, bool) {
	p := l.registry.Get(providerID)
	if p == nil || p.Text.Normalize.MaxTemperature == nil {
		return 0, false
	}
	return *p.Text.Normalize.MaxTemperature, true
}

// DefaultMaxTokens returns the max-output-tokens value to substitute when a
// caller leaves it out.
func (l *Layer) DefaultMaxTokens(providerID string) (int, bool) {
	p := l.registry.Get(providerID)
	if p == nil || p.Text.Normalize.DefaultMaxTokensWhenMissing == nil {
		return 0, false
	}
	return *p.Text.Normalize.DefaultMaxTokensWhenMissing, true
}

// ReasoningEffortFallback returns the effort ladder, weakest first, for the
// provider and model. It returns nil when the provider declares no ladder
// and an empty slice when the model takes no explicit effort.
func (l *Layer) ReasoningEffortFallback(providerID, model string) []domain.ReasoningEffort {
	p := l.registry.Get(providerID)
	if p == nil || p.Text.Normalize.ReasoningEffortFallback == nil {
		return nil
	}
	return p.Text.Normalize.ReasoningEffortFallback(model)
}

// NormalizeServiceTier maps tier to the provider's native term. Matching is
// case-insensitive; unmatched values are returned unchanged.
func (l *Layer) NormalizeServiceTier(providerID, tier string) string {
	p := l.registry.Get(providerID)
	if p == nil || tier == "" {
		return tier
	}
	if native, ok := p.Text.Normalize.ServiceTierAliases[strings.ToLower(strings.TrimSpace(tier))]; ok {
		return native
	}
	return tier
}

// ResolveParamPolicyOverride matches candidate parameter paths against the
// provider's policy. The unsupported list is consulted first, so an
// unsupported entry beats a supported entry for the same path. decided is
// false when neither list mentions any candidate.
func (l *Layer) ResolveParamPolicyOverride(providerID string, candidates []string) (supported, decided bool) {
	p := l.registry.Get(providerID)
	if p == nil || len(candidates) == 0 {
		return false, false
	}
	policy := p.Text.ParamPolicy
	if anyPathMatches(policy.UnsupportedParams, candidates) {
		return false, true
	}
	if anyPathMatches(policy.SupportedParams, candidates) {
		return true, true
	}
	return false, false
}

// ResolveParamSupport expands paramPath through the parameter aliases and
// resolves it with ResolveParamPolicyOverride.
func (l *Layer) ResolveParamSupport(providerID, paramPath string) (supported, decided bool) {
	return l.ResolveParamPolicyOverride(providerID, ParamPathCandidates(paramPath))
}

func anyPathMatches(entries, candidates []string) bool {
	for _, entry := range entries {
		for _, c := range candidates {
			if pathMatches(entry, c) {
				return true
			}
		}
	}
	return false
}

// pathMatches reports whether a policy entry covers a candidate: equal
// paths, a candidate nested under the entry, or an entry nested under the
// candidate.
func pathMatches(entry, candidate string) bool {
	if entry == "" || candidate == "" {
		return false
	}
	return entry == candidate ||
		strings.HasPrefix(candidate, entry+".") ||
		strings.HasPrefix(entry, candidate+".")
}

// paramAliases lists the spellings a root parameter has across protocols.
var paramAliases = map[string][]string{
	"max_tokens":      {"max_tokens", "max_output_tokens", "max_completion_tokens"},
	"max_tool_calls":  {"max_tool_calls", "max_tools_calls"},
	"stop":            {"stop", "stop_sequences"},
	"reasoning":       {"reasoning", "thinking"},
	"service_tier":    {"service_tier", "serviceTier"},
	"response_format": {"response_format", "text", "structured_outputs"},
	"logprobs":        {"logprobs", "top_logprobs"},
	"top_logprobs":    {"top_logprobs", "logprobs"},
}

// ParamPathCandidates expands the root segment of a dotted parameter path
// into its aliases, keeping the rest of the path.
func ParamPathCandidates(paramPath string) []string {
	var segments []string
	for _, s := range strings.Split(strings.TrimSpace(paramPath), ".") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return nil
	}

	root, rest := segments[0], segments[1:]
	aliases, ok := paramAliases[root]
	if !ok {
		aliases = []string{root}
	}
	suffix := ""
	if len(rest) > 0 {
		suffix = "." + strings.Join(rest, ".")
	}

	seen := make(map[string]bool, len(aliases))
	out := make([]string, 0, len(aliases))
	for _, a := range aliases {
		c := a + suffix
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// PickEffort chooses the level to send for requested from ladder: the
// requested level when present, otherwise the strongest level not above it,
// otherwise the weakest level. ok is false for an empty ladder.
func PickEffort(ladder []domain.ReasoningEffort, requested domain.ReasoningEffort) (domain.ReasoningEffort, bool) {
	if len(ladder) == 0 {
		return "", false
	}
	for _, l := range ladder {
		if l == requested {
			return l, true
		}
	}
	pick := ladder[0]
	rank := requested.Rank()
	for _, l := range ladder {
		if l.Rank() <= rank {
			pick = l
		}
	}
	return pick, true
}
