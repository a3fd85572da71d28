package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

func TestInferMediaType(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"http://example.com/image.jpg", "image/jpeg"},
		{"http://example.com/image.JPEG", "image/jpeg"},
		{"http://example.com/image.png", "image/png"},
		{"http://example.com/image.PNG?size=large", "image/png"},
		{"http://example.com/image.gif", "image/gif"},
		{"http://example.com/image.webp#frag", "image/webp"},
		{"http://example.com/image.unknown", ""},
		{"http://example.com/image", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferMediaType(tt.url))
		})
	}
}

func TestNormalizeMediaType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"image/jpeg", "image/jpeg"},
		{"image/jpg", "image/jpeg"},
		{"IMAGE/JPG", "image/jpeg"},
		{"image/png", "image/png"},
		{"image/jpeg; charset=utf-8", "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeMediaType(tt.input))
		})
	}
}

func TestParseDataURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantMedia string
		wantData  string
		wantOK    bool
	}{
		{name: "valid jpeg", url: "data:image/jpeg;base64,/9j/4AAQSkZ", wantMedia: "image/jpeg", wantData: "/9j/4AAQSkZ", wantOK: true},
		{name: "valid png", url: "data:image/png;base64,iVBORw0KGgo", wantMedia: "image/png", wantData: "iVBORw0KGgo", wantOK: true},
		{name: "jpg normalized", url: "data:image/JPG;base64,abc", wantMedia: "image/jpeg", wantData: "abc", wantOK: true},
		{name: "missing base64 marker", url: "data:image/jpeg,/9j/4AAQSkZ"},
		{name: "not a data URL", url: "http://example.com/image.png"},
		{name: "missing comma", url: "data:image/jpeg;base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media, data, ok := ParseDataURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMedia, media)
			assert.Equal(t, tt.wantData, data)
		})
	}
}

func TestImageFromURLAndBack(t *testing.T) {
	part := ImageFromURL("data:image/png;base64,AAAA", "high")
	assert.Equal(t, domain.ImagePart{Source: domain.SourceData, Data: "AAAA", MimeType: "image/png", Detail: "high"}, part)
	assert.Equal(t, "data:image/png;base64,AAAA", ImageURL(part))

	raw := ImageFromURL("data:text/plain,hello", "")
	assert.Equal(t, domain.SourceData, raw.Source)
	assert.Equal(t, "data:text/plain,hello", raw.Data)
	assert.Equal(t, "data:text/plain,hello", ImageURL(raw))

	remote := ImageFromURL("https://example.com/cat.jpg", "")
	assert.Equal(t, domain.SourceURL, remote.Source)
	assert.Equal(t, "image/jpeg", remote.MimeType)
	assert.Equal(t, "https://example.com/cat.jpg", ImageURL(remote))

	assert.Equal(t, "data:image/png;base64,QQ==", DataURL("", "QQ=="))
}

func TestToolInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"q": "x"}`, `{"q":"x"}`},
		{``, `{}`},
		{`{"q":`, `{}`},
		{`[1,2]`, `{}`},
		{`"str"`, `{}`},
		{`  {"a":{"b":1}}  `, `{"a":{"b":1}}`},
	}
	for _, tt := range tests {
		assert.JSONEq(t, tt.want, string(ToolInput(tt.in)), tt.in)
	}
}

func TestCompactJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CompactJSON(json.RawMessage("{ \"a\" : 1 }")))
	assert.Equal(t, `{}`, CompactJSON(nil))
}
