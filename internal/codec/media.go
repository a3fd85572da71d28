package codec

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

// ParseDataURL splits a base64 data URI into its media type and payload.
// ok is false for anything that is not a base64 data URI.
func ParseDataURL(url string) (mediaType, data string, ok bool) {
	// Format: data:image/jpeg;base64,/9j/4AAQSkZ...
	content, found := strings.CutPrefix(url, "data:")
	if !found {
		return "", "", false
	}

	metadata, data, found := strings.Cut(content, ",")
	if !found {
		return "", "", false
	}

	parts := strings.Split(metadata, ";")
	isBase64 := false
	for _, part := range parts[1:] {
		if part == "base64" {
			isBase64 = true
			break
		}
	}
	if !isBase64 {
		return "", "", false
	}

	return NormalizeMediaType(parts[0]), data, true
}

// DataURL builds a base64 data URI. A payload that already is a data URI is
// returned unchanged.
func DataURL(mediaType, data string) string {
	if strings.HasPrefix(data, "data:") {
		return data
	}
	if mediaType == "" {
		mediaType = "image/png"
	}
	return "data:" + mediaType + ";base64," + data
}

// NormalizeMediaType lowercases a media type, drops parameters and
// normalizes image/jpg to image/jpeg.
func NormalizeMediaType(mediaType string) string {
	mainType, _, _ := strings.Cut(mediaType, ";")
	mainType = strings.TrimSpace(strings.ToLower(mainType))

	if mainType == "image/jpg" {
		return "image/jpeg"
	}
	return mainType
}

// InferMediaType guesses an image media type from a URL's extension.
func InferMediaType(url string) string {
	urlLower := strings.ToLower(url)
	if i := strings.IndexAny(urlLower, "?#"); i >= 0 {
		urlLower = urlLower[:i]
	}

	switch {
	case strings.HasSuffix(urlLower, ".jpg") || strings.HasSuffix(urlLower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(urlLower, ".png"):
		return "image/png"
	case strings.HasSuffix(urlLower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(urlLower, ".webp"):
		return "image/webp"
	default:
		return ""
	}
}

// ImageFromURL builds an image part from a URL or data URI. Base64 data
// URIs become inline data; a data URI without base64 encoding is kept whole
// as inline data.
func ImageFromURL(url, detail string) domain.ImagePart {
	if mediaType, data, ok := ParseDataURL(url); ok {
		return domain.ImagePart{Source: domain.SourceData, Data: data, MimeType: mediaType, Detail: detail}
	}
	if strings.HasPrefix(url, "data:") {
		return domain.ImagePart{Source: domain.SourceData, Data: url, Detail: detail}
	}
	return domain.ImagePart{Source: domain.SourceURL, Data: url, MimeType: InferMediaType(url), Detail: detail}
}

// ImageURL renders an image part as a URL or data URI.
func ImageURL(p domain.ImagePart) string {
	if p.Source == domain.SourceData {
		return DataURL(p.MimeType, p.Data)
	}
	return p.Data
}

// ToolInput parses tool-call arguments into a JSON object, returning {}
// when they are empty, malformed or not an object.
func ToolInput(arguments string) json.RawMessage {
	trimmed := bytes.TrimSpace([]byte(arguments))
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return json.RawMessage("{}")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return json.RawMessage("{}")
	}
	return buf.Bytes()
}

// CompactJSON renders raw JSON compactly, or "{}" when it is empty.
func CompactJSON(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
