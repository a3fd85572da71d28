package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

// RequestIDKey is the context key for the gateway request id.
const RequestIDKey contextKey = "request_id"

// RequestIDHeader carries the gateway request id on responses.
const RequestIDHeader = "X-Request-ID"

// RequestIDPrefix starts every gateway-assigned id.
const RequestIDPrefix = "req_"

// NewRequestID returns a fresh gateway request id.
func NewRequestID() string {
	return RequestIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RequestIDMiddleware assigns each request a gateway id. A well-formed id
// supplied by the caller is kept so that retries correlate.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !strings.HasPrefix(requestID, RequestIDPrefix) || len(requestID) > 64 {
			requestID = NewRequestID()
		}
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from context.
// Returns an empty string if no request ID is set.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
