package profile

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// fileSpec is the on-disk shape of a profile overlay file:
//
//	profiles:
//	  - id: acme
//	    aliases: [acme-ai]
//	    compat_adapter: true
//	    adapter_backed_overrides:
//	      image.generate: true
//	    text:
//	      unsupported_params: [logit_bias]
//	      max_temperature: 1.2
//	      default_max_tokens: 2048
//	      service_tier_aliases: {standard: default}
//	      reasoning_effort:
//	        default: [low, high]
//	        rules:
//	          - {contains: acme-r1, ladder: [high]}
type fileSpec struct {
	Profiles []profileSpec `koanf:"profiles"`
}

type profileSpec struct {
	ID            string          `koanf:"id"`
	Aliases       []string        `koanf:"aliases"`
	TextOnly      bool            `koanf:"text_only"`
	CompatAdapter bool            `koanf:"compat_adapter"`
	Overrides     map[string]bool `koanf:"adapter_backed_overrides"`
	Text          textSpec        `koanf:"text"`
}

type textSpec struct {
	SupportedParams    []string          `koanf:"supported_params"`
	UnsupportedParams  []string          `koanf:"unsupported_params"`
	MaxTemperature     *float64          `koanf:"max_temperature"`
	DefaultMaxTokens   *int              `koanf:"default_max_tokens"`
	ServiceTierAliases map[string]string `koanf:"service_tier_aliases"`
	ReasoningEffort    *ladderSpec       `koanf:"reasoning_effort"`
}

type ladderSpec struct {
	Default []domain.ReasoningEffort `koanf:"default"`
	Rules   []EffortRule             `koanf:"rules"`
}

// LoadFile reads provider profiles from a YAML overlay file.
func LoadFile(path string) ([]Profile, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load provider profiles from %s: %w", path, err)
	}

	var spec fileSpec
	if err := k.Unmarshal("", &spec); err != nil {
		return nil, fmt.Errorf("failed to decode provider profiles: %w", err)
	}

	profiles := make([]Profile, 0, len(spec.Profiles))
	for i, ps := range spec.Profiles {
		p, err := ps.toProfile()
		if err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (ps profileSpec) toProfile() (Profile, error) {
	if NormalizeID(ps.ID) == "" {
		return Profile{}, fmt.Errorf("id is required")
	}

	p := Profile{
		ID:            ps.ID,
		Aliases:       ps.Aliases,
		TextOnly:      ps.TextOnly,
		CompatAdapter: ps.CompatAdapter,
		Text: TextPolicy{
			ParamPolicy: ParamPolicy{
				SupportedParams:   ps.Text.SupportedParams,
				UnsupportedParams: ps.Text.UnsupportedParams,
			},
			Normalize: Normalize{
				MaxTemperature:              ps.Text.MaxTemperature,
				DefaultMaxTokensWhenMissing: ps.Text.DefaultMaxTokens,
				ServiceTierAliases:          ps.Text.ServiceTierAliases,
			},
		},
	}

	if len(ps.Overrides) > 0 {
		p.AdapterBackedOverrides = make(map[domain.Capability]bool, len(ps.Overrides))
		for name, supported := range ps.Overrides {
			c := domain.NormalizeCapability(name)
			if !c.IsAdapterBacked() {
				return Profile{}, fmt.Errorf("%s: %q is not an adapter-backed capability", ps.ID, name)
			}
			p.AdapterBackedOverrides[c] = supported
		}
	}

	if ls := ps.Text.ReasoningEffort; ls != nil {
		if err := validateLadder(ls.Default); err != nil {
			return Profile{}, fmt.Errorf("%s: reasoning_effort.default: %w", ps.ID, err)
		}
		for j, rule := range ls.Rules {
			if rule.Contains == "" {
				return Profile{}, fmt.Errorf("%s: reasoning_effort.rules[%d]: contains is required", ps.ID, j)
			}
			if err := validateLadder(rule.Ladder); err != nil {
				return Profile{}, fmt.Errorf("%s: reasoning_effort.rules[%d]: %w", ps.ID, j, err)
			}
		}
		p.Text.Normalize.ReasoningEffortFallback = RuleLadder(ls.Default, ls.Rules...)
	}

	return p, nil
}

// validateLadder requires known levels in strictly increasing order.
func validateLadder(levels []domain.ReasoningEffort) error {
	prev := -1
	for _, l := range levels {
		rank := l.Rank()
		if rank < 0 {
			return fmt.Errorf("unknown reasoning effort %q", l)
		}
		if rank <= prev {
			return fmt.Errorf("levels must be ordered weakest to strongest")
		}
		prev = rank
	}
	return nil
}

// Load returns the builtin registry with the overlay file at path merged
// in. An empty path returns Default.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	overlay, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(Merge(Builtin(), overlay)...)
}
