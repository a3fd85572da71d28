package profile

import "github.com/tjfontaine/polyglot-translate/internal/core/domain"

const (
	none    = domain.EffortNone
	minimal = domain.EffortMinimal
	low     = domain.EffortLow
	medium  = domain.EffortMedium
	high    = domain.EffortHigh
	xhigh   = domain.EffortXHigh
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int         { return &v }

func ladder(levels ...domain.ReasoningEffort) []domain.ReasoningEffort { return levels }

// Params dropped by providers that front Anthropic models.
var anthropicStyleUnsupported = []string{
	"frequency_penalty",
	"presence_penalty",
	"logit_bias",
	"logprobs",
	"top_logprobs",
}

// compat returns a bare profile for a provider served by the generic
// OpenAI-compatible adapter.
func compat(id string, aliases ...string) Profile {
	return Profile{ID: id, Aliases: aliases, CompatAdapter: true}
}

// Builtin returns the fixed provider table. Each call returns fresh values.
func Builtin() []Profile {
	profiles := []Profile{
		{
			ID:            "openai",
			CompatAdapter: true,
			AdapterBackedOverrides: map[domain.Capability]bool{
				domain.CapabilityVideoGenerate: true,
			},
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{
					SupportedParams:   []string{"reasoning", "service_tier", "response_format", "parallel_tool_calls"},
					UnsupportedParams: []string{"top_k"},
				},
				Normalize: Normalize{
					MaxTemperature:     f64(2),
					ServiceTierAliases: map[string]string{"standard": "default"},
					ReasoningEffortFallback: RuleLadder(ladder(low, medium, high),
						EffortRule{Contains: "gpt-5-pro", Ladder: ladder(high)},
						EffortRule{Contains: "gpt-5.1-codex-max", Ladder: ladder(low, medium, high, xhigh)},
						EffortRule{Contains: "gpt-5.2", Ladder: ladder(none, low, medium, high, xhigh)},
						EffortRule{Contains: "gpt-5.1", Ladder: ladder(none, low, medium, high)},
						EffortRule{Contains: "gpt-5", Ladder: ladder(minimal, low, medium, high)},
					),
				},
			},
		},
		{
			ID: "anthropic",
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{
					SupportedParams:   []string{"top_k", "reasoning", "stop", "service_tier"},
					UnsupportedParams: append([]string{"seed", "response_format"}, anthropicStyleUnsupported...),
				},
				Normalize: Normalize{
					MaxTemperature:              f64(1),
					DefaultMaxTokensWhenMissing: intp(4096),
					ServiceTierAliases: map[string]string{
						"default":  "standard_only",
						"standard": "standard_only",
						"flex":     "standard_only",
						"priority": "auto",
					},
					ReasoningEffortFallback: StaticLadder(low, medium, high),
				},
			},
		},
		{
			ID:            "google-ai-studio",
			Aliases:       []string{"google"},
			CompatAdapter: true,
			AdapterBackedOverrides: map[domain.Capability]bool{
				domain.CapabilityVideoGenerate: true,
			},
			Text: TextPolicy{
				Normalize: Normalize{
					MaxTemperature: f64(2),
					ReasoningEffortFallback: RuleLadder(ladder(low, medium, high),
						EffortRule{Contains: "gemini-3", Ladder: ladder(low, high)},
						EffortRule{Contains: "gemini-2.5-flash", Ladder: ladder(none, low, medium, high)},
					),
				},
			},
		},
		{
			ID:            "google-vertex",
			CompatAdapter: true,
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{UnsupportedParams: anthropicStyleUnsupported},
				Normalize:   Normalize{DefaultMaxTokensWhenMissing: intp(4096)},
			},
		},
		{
			ID:            "amazon-bedrock",
			CompatAdapter: true,
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{UnsupportedParams: anthropicStyleUnsupported},
				Normalize:   Normalize{DefaultMaxTokensWhenMissing: intp(4096)},
			},
		},
		{
			ID:            "mistral",
			CompatAdapter: true,
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{
					SupportedParams:   []string{"random_seed", "safe_prompt"},
					UnsupportedParams: []string{"stream_options", "user"},
				},
				Normalize: Normalize{MaxTemperature: f64(1.5)},
			},
		},
		{
			ID:            "groq",
			CompatAdapter: true,
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{
					UnsupportedParams: []string{"logprobs", "logit_bias", "top_logprobs", "messages.name"},
				},
				Normalize: Normalize{MaxTemperature: f64(2)},
			},
		},
		{
			ID:            "cerebras",
			CompatAdapter: true,
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{
					UnsupportedParams: []string{"frequency_penalty", "presence_penalty", "logit_bias"},
				},
				Normalize: Normalize{MaxTemperature: f64(1.5)},
			},
		},
		{
			ID:            "x-ai",
			Aliases:       []string{"xai"},
			CompatAdapter: true,
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{UnsupportedParams: []string{"service_tier", "instructions"}},
				Normalize: Normalize{
					MaxTemperature: f64(2),
					ReasoningEffortFallback: RuleLadder(ladder(),
						EffortRule{Contains: "grok-3-mini", Ladder: ladder(low, high)},
					),
				},
			},
		},
		{
			ID:            "deepseek",
			CompatAdapter: true,
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{UnsupportedParams: []string{"logit_bias"}},
				Normalize:   Normalize{MaxTemperature: f64(2)},
			},
		},
		{
			ID:            "alibaba",
			Aliases:       []string{"qwen"},
			CompatAdapter: true,
			AdapterBackedOverrides: map[domain.Capability]bool{
				domain.CapabilityVideoGenerate: true,
			},
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{SupportedParams: []string{"max_tokens", "top_k"}},
				Normalize:   Normalize{MaxTemperature: f64(2)},
			},
		},
		{
			ID:            "minimax",
			Aliases:       []string{"minimax-lightning"},
			CompatAdapter: true,
			AdapterBackedOverrides: map[domain.Capability]bool{
				domain.CapabilityMusicGenerate: true,
				domain.CapabilityVideoGenerate: true,
			},
			Text: TextPolicy{
				Normalize: Normalize{MaxTemperature: f64(1)},
			},
		},
		{
			ID:            "z-ai",
			Aliases:       []string{"zai"},
			CompatAdapter: true,
			Text: TextPolicy{
				Normalize: Normalize{MaxTemperature: f64(1)},
			},
		},
		{
			ID:            "moonshot-ai",
			Aliases:       []string{"moonshot-ai-turbo", "moonshotai"},
			CompatAdapter: true,
			Text: TextPolicy{
				Normalize: Normalize{MaxTemperature: f64(1)},
			},
		},
		{
			ID:            "cohere",
			CompatAdapter: true,
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{UnsupportedParams: []string{"logit_bias", "parallel_tool_calls"}},
				Normalize:   Normalize{MaxTemperature: f64(1)},
			},
		},
		{
			ID:            "perplexity",
			CompatAdapter: true,
			Text: TextPolicy{
				ParamPolicy: ParamPolicy{UnsupportedParams: []string{"tools", "tool_choice", "logit_bias"}},
			},
		},
		{
			ID:            "together",
			CompatAdapter: true,
			AdapterBackedOverrides: map[domain.Capability]bool{
				domain.CapabilityVideoGenerate: true,
			},
		},

		// Text-only providers: compatible adapters that expose chat only.
		{ID: "ai21", CompatAdapter: true, TextOnly: true},
		{ID: "xiaomi", CompatAdapter: true, TextOnly: true},
		{ID: "arcee", Aliases: []string{"arcee-ai"}, CompatAdapter: true, TextOnly: true},

		// Media providers behind dedicated adapters.
		{
			ID: "black-forest-labs",
			AdapterBackedOverrides: map[domain.Capability]bool{
				domain.CapabilityImageGenerate: true,
				domain.CapabilityImageEdit:     true,
			},
		},
		{ID: "elevenlabs"},
		{ID: "suno"},
	}

	for _, p := range []Profile{
		compat("atlas-cloud", "atlascloud"),
		compat("baseten"),
		compat("bytedance-seed"),
		compat("clarifai"),
		compat("chutes"),
		compat("cloudflare"),
		compat("crusoe"),
		compat("deepinfra"),
		compat("featherless"),
		compat("fireworks"),
		compat("friendli"),
		compat("gmicloud"),
		compat("hyperbolic"),
		compat("inception"),
		compat("infermatic"),
		compat("inflection"),
		compat("liquid", "liquid-ai"),
		compat("mancer"),
		compat("morph"),
		compat("morpheus"),
		compat("nebius-token-factory"),
		compat("novitaai"),
		compat("parasail"),
		compat("phala"),
		compat("relace"),
		compat("sambanova"),
		compat("siliconflow"),
		compat("sourceful"),
		compat("weights-and-biases"),
		compat("aionlabs", "aion-labs"),
	} {
		profiles = append(profiles, p)
	}
	return profiles
}
