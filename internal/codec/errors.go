package codec

import (
	"encoding/json"
	"net/http"

	"github.com/tjfontaine/polyglot-translate/internal/api/anthropic"
	"github.com/tjfontaine/polyglot-translate/internal/api/openai"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// ErrorResponse is a rendered error body with its HTTP status.
type ErrorResponse struct {
	StatusCode int
	Body       []byte
}

// ErrorFormatter renders errors in one protocol's envelope.
type ErrorFormatter interface {
	FormatError(err error) *ErrorResponse
}

// FormatterFor returns the error formatter for a protocol. The Responses
// API shares the OpenAI envelope.
func FormatterFor(apiType domain.APIType) ErrorFormatter {
	if apiType == domain.APITypeAnthropic {
		return anthropicFormatter{}
	}
	return openAIFormatter{}
}

// errorTypeNames holds the wire error type for each domain error type,
// indexed OpenAI first and Anthropic second. Unlisted types are server
// errors.
var errorTypeNames = map[domain.ErrorType][2]string{
	domain.ErrorTypeInvalidRequest: {"invalid_request_error", "invalid_request_error"},
	domain.ErrorTypePermission:     {"permission_denied", "permission_error"},
	domain.ErrorTypeNotFound:       {"not_found", "not_found_error"},
}

func wireErrorType(t domain.ErrorType, anthropicNames bool) string {
	names, ok := errorTypeNames[t]
	switch {
	case !ok && anthropicNames:
		return "api_error"
	case !ok:
		return "server_error"
	case anthropicNames:
		return names[1]
	default:
		return names[0]
	}
}

type openAIFormatter struct{}

func (openAIFormatter) FormatError(err error) *ErrorResponse {
	apiErr := domain.AsAPIError(err)
	body, _ := json.Marshal(openai.ErrorResponse{
		Error: &openai.APIError{
			Message: apiErr.Message,
			Type:    wireErrorType(apiErr.Type, false),
			Param:   apiErr.Param,
			Code:    string(apiErr.Code),
		},
	})
	return &ErrorResponse{StatusCode: apiErr.HTTPStatusCode(), Body: body}
}

// anthropicFormatter renders the Messages envelope, which has no param or
// code field; the param is folded into the message instead.
type anthropicFormatter struct{}

func (anthropicFormatter) FormatError(err error) *ErrorResponse {
	apiErr := domain.AsAPIError(err)
	message := apiErr.Message
	if apiErr.Param != "" && apiErr.Code != domain.ErrorCodeDecodeFailed {
		message = apiErr.Param + ": " + message
	}
	body, _ := json.Marshal(anthropic.ErrorResponse{
		Type: "error",
		Error: anthropic.APIError{
			Type:    wireErrorType(apiErr.Type, true),
			Message: message,
		},
	})
	return &ErrorResponse{StatusCode: apiErr.HTTPStatusCode(), Body: body}
}

// WriteError writes err as a JSON error response in apiType's envelope.
func WriteError(w http.ResponseWriter, err error, apiType domain.APIType) {
	resp := FormatterFor(apiType).FormatError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
