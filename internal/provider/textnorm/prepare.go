package textnorm

import (
	"fmt"
	"strconv"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// Action describes how Prepare changed a parameter.
type Action string

const (
	ActionDropped   Action = "dropped"
	ActionClamped   Action = "clamped"
	ActionDefaulted Action = "defaulted"
	ActionAliased   Action = "aliased"
	ActionFallback  Action = "fallback"
)

// Adjustment records one change Prepare made to a request.
type Adjustment struct {
	Param  string `json:"param"`
	Action Action `json:"action"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

func (a Adjustment) String() string {
	switch {
	case a.From != "" && a.To != "":
		return fmt.Sprintf("%s %s %s->%s", a.Param, a.Action, a.From, a.To)
	case a.To != "":
		return fmt.Sprintf("%s %s to %s", a.Param, a.Action, a.To)
	default:
		return fmt.Sprintf("%s %s", a.Param, a.Action)
	}
}

// Prepare returns a copy of req normalized for providerID, with every change
// it made. Explicitly unsupported parameters are dropped, temperature is
// clamped to the ceiling, a missing max-tokens value is defaulted, the
// service tier is aliased and the reasoning effort is moved onto the
// model's ladder. The input request is not modified. Unknown providers get
// an unmodified copy.
func (l *Layer) Prepare(req *domain.ChatRequest, providerID string) (*domain.ChatRequest, []Adjustment) {
	out := req.Clone()
	if l.registry.Get(providerID) == nil {
		return out, nil
	}

	var adj []Adjustment
	drop := func(param string, present bool, clear func()) {
		if !present {
			return
		}
		if supported, decided := l.ResolveParamSupport(providerID, param); decided && !supported {
			clear()
			adj = append(adj, Adjustment{Param: param, Action: ActionDropped})
		}
	}

	drop("temperature", out.Temperature != nil, func() { out.Temperature = nil })
	drop("top_p", out.TopP != nil, func() { out.TopP = nil })
	drop("top_k", out.TopK != nil, func() { out.TopK = nil })
	drop("seed", out.Seed != nil, func() { out.Seed = nil })
	drop("frequency_penalty", out.FrequencyPenalty != nil, func() { out.FrequencyPenalty = nil })
	drop("presence_penalty", out.PresencePenalty != nil, func() { out.PresencePenalty = nil })
	drop("max_tokens", out.MaxTokens != nil, func() { out.MaxTokens = nil })
	drop("stop", len(out.Stop) > 0, func() { out.Stop = nil })
	drop("n", out.N != nil, func() { out.N = nil })
	drop("logit_bias", len(out.LogitBias) > 0, func() { out.LogitBias = nil })
	drop("logprobs", out.Logprobs != nil, func() { out.Logprobs = nil })
	drop("top_logprobs", out.TopLogprobs != nil, func() { out.TopLogprobs = nil })
	drop("stream_options", out.StreamOptions != nil, func() { out.StreamOptions = nil })
	drop("tools", len(out.Tools) > 0, func() { out.Tools = nil; out.ToolChoice = nil })
	drop("tool_choice", out.ToolChoice != nil, func() { out.ToolChoice = nil })
	drop("parallel_tool_calls", out.ParallelToolCalls != nil, func() { out.ParallelToolCalls = nil })
	drop("max_tool_calls", out.MaxToolCalls != nil, func() { out.MaxToolCalls = nil })
	drop("reasoning", out.Reasoning != nil, func() { out.Reasoning = nil })
	drop("response_format", out.ResponseFormat != nil, func() { out.ResponseFormat = nil })
	drop("service_tier", out.ServiceTier != "", func() { out.ServiceTier = "" })
	drop("user", out.User != "", func() { out.User = "" })
	drop("metadata", len(out.Metadata) > 0, func() { out.Metadata = nil })

	if out.Temperature != nil {
		if ceiling, ok := l.MaxTemperature(providerID); ok && *out.Temperature > ceiling {
			adj = append(adj, Adjustment{
				Param:  "temperature",
				Action: ActionClamped,
				From:   formatFloat(*out.Temperature),
				To:     formatFloat(ceiling),
			})
			out.Temperature = &ceiling
		}
	}

	if out.MaxTokens == nil {
		if def, ok := l.DefaultMaxTokens(providerID); ok {
			out.MaxTokens = &def
			adj = append(adj, Adjustment{Param: "max_tokens", Action: ActionDefaulted, To: strconv.Itoa(def)})
		}
	}

	if out.ServiceTier != "" {
		if native := l.NormalizeServiceTier(providerID, out.ServiceTier); native != out.ServiceTier {
			adj = append(adj, Adjustment{Param: "service_tier", Action: ActionAliased, From: out.ServiceTier, To: native})
			out.ServiceTier = native
		}
	}

	if out.Reasoning != nil && out.Reasoning.Effort != "" {
		if ladder := l.ReasoningEffortFallback(providerID, out.Model); ladder != nil {
			requested := out.Reasoning.Effort
			picked, ok := PickEffort(ladder, requested)
			switch {
			case !ok:
				out.Reasoning.Effort = ""
				adj = append(adj, Adjustment{Param: "reasoning.effort", Action: ActionDropped, From: string(requested)})
			case picked != requested:
				out.Reasoning.Effort = picked
				adj = append(adj, Adjustment{Param: "reasoning.effort", Action: ActionFallback, From: string(requested), To: string(picked)})
			}
		}
	}

	return out, adj
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
