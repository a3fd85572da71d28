package codec

import (
	"fmt"
	"strings"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// FieldError is a decode failure inside one message, before the message's
// position is attached.
type FieldError struct {
	Field    string
	Expected string
}

// Fieldf builds a FieldError with a formatted expectation.
func Fieldf(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Expected: fmt.Sprintf(format, args...)}
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Expected
}

// At attaches the protocol and message index.
func (e *FieldError) At(protocol domain.APIType, index int) *domain.DecodeError {
	return &domain.DecodeError{Protocol: protocol, MessageIndex: index, Field: e.Field, Expected: e.Expected}
}

// Prefixed nests the field under parent.
func (e *FieldError) Prefixed(parent string) *FieldError {
	return &FieldError{Field: parent + "." + e.Field, Expected: e.Expected}
}

// RequestError is a decode failure outside the message list.
func RequestError(protocol domain.APIType, field, expected string) *domain.DecodeError {
	return &domain.DecodeError{Protocol: protocol, MessageIndex: -1, Field: field, Expected: expected}
}

// SyntaxError reports a body that is not a valid request document.
func SyntaxError(protocol domain.APIType, err error) *domain.DecodeError {
	return &domain.DecodeError{Protocol: protocol, MessageIndex: -1, Expected: "valid JSON request body: " + err.Error()}
}

// IntMap copies a map, keeping nil as nil.
func IntMap(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ServiceTier resolves the requested tier. speed "fast" asks for the
// priority tier and wins over an explicit tier.
func ServiceTier(speed, tier string) string {
	if strings.EqualFold(strings.TrimSpace(speed), "fast") {
		return "priority"
	}
	return tier
}

// ParseEffort normalizes a wire reasoning-effort value. Anthropic's "max"
// is the strongest canonical level.
func ParseEffort(s string) domain.ReasoningEffort {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "max" {
		return domain.EffortXHigh
	}
	return domain.ReasoningEffort(s)
}

// ToolChoice resolves a wire tool_choice. A forced name wins; "any" and
// "required" both mean required; unknown strings fall back to auto.
func ToolChoice(mode, name string) *domain.ToolChoice {
	if name != "" {
		return &domain.ToolChoice{Mode: domain.ToolChoiceTool, Name: name}
	}
	switch strings.ToLower(mode) {
	case "none":
		return &domain.ToolChoice{Mode: domain.ToolChoiceNone}
	case "required", "any":
		return &domain.ToolChoice{Mode: domain.ToolChoiceRequired}
	default:
		return &domain.ToolChoice{Mode: domain.ToolChoiceAuto}
	}
}

// FirstInt returns the first non-nil value.
func FirstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			out := *v
			return &out
		}
	}
	return nil
}

// Strings copies a string slice, keeping nil as nil.
func Strings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// StringMap copies a map, keeping nil as nil.
func StringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
