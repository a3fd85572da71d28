package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	color.NoColor = true

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDecodeCmd(t *testing.T) {
	in := `{"model":"gpt-4o","temperature":1.5,"messages":[{"role":"user","content":"hi"}]}`
	out, err := run(t, in, "decode", "--protocol", "openai", "--provider", "anthropic", "--target", "anthropic")
	require.NoError(t, err)

	var result struct {
		Protocol    string `json:"protocol"`
		Provider    string `json:"provider"`
		Request     map[string]any
		Adjustments []map[string]any
		Target      string
		Body        map[string]any
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, "openai", result.Protocol)
	assert.Equal(t, "anthropic", result.Provider)
	assert.Equal(t, 1.0, result.Request["temperature"])
	assert.Len(t, result.Adjustments, 2)
	assert.Equal(t, "anthropic", result.Target)
	assert.Equal(t, 4096.0, result.Body["max_tokens"])
}

func TestDecodeCmdErrors(t *testing.T) {
	_, err := run(t, `{}`, "decode")
	assert.ErrorContains(t, err, "--protocol is required")

	_, err = run(t, `{}`, "decode", "-p", "gemini")
	assert.ErrorContains(t, err, "unknown protocol")

	_, err = run(t, `{"model":"m","messages":[]}`, "decode", "-p", "anthropic")
	assert.ErrorContains(t, err, "messages")

	_, err = run(t, `{"model":"m","messages":[{"role":"user","content":"x"}]}`, "decode", "-p", "openai", "--provider", "nope")
	assert.ErrorContains(t, err, `unknown provider "nope"`)
}

func TestEncodeCmdFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"id": "upstream",
		"model": "claude-sonnet-4-5",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": [{"type": "text", "text": "hello"}]}, "finish_reason": "length"}]
	}`), 0o600))

	out, err := run(t, "", "encode", "-p", "anthropic", "--request-id", "req_cli", path)
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, "req_cli", resp["id"])
	assert.Equal(t, "max_tokens", resp["stop_reason"])
}

func TestEncodeCmdGeneratesRequestID(t *testing.T) {
	in := `{"model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":[{"type":"text","text":"ok"}]},"finish_reason":"stop"}]}`
	out, err := run(t, in, "encode", "-p", "openai")
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.True(t, strings.HasPrefix(resp["id"].(string), "req_"), resp["id"])
}

func TestStreamCmd(t *testing.T) {
	in := `[{"type":"start"},{"type":"delta_text","text":"hi"},{"type":"stop","finish_reason":"stop"}]`

	out, err := run(t, in, "stream", "-p", "openai", "--request-id", "req_s")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "data: [DONE]\n\n"), out)

	out, err = run(t, in, "stream", "-p", "responses", "--request-id", "req_s")
	require.NoError(t, err)
	assert.Contains(t, out, "event: response.output_text.delta\n")
	assert.NotContains(t, out, "[DONE]")
}

func TestProfilesCmd(t *testing.T) {
	out, err := run(t, "", "profiles", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "anthropic")

	out, err = run(t, "", "profiles", "show", "anthropic")
	require.NoError(t, err)
	assert.Contains(t, out, "id: anthropic")
	assert.Contains(t, out, "max_temperature: 1")

	out, err = run(t, "", "profiles", "show", "anthropic", "-o", "json")
	require.NoError(t, err)
	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view), out)
	assert.Equal(t, "anthropic", view["id"])
	assert.Contains(t, view, "capabilities")

	_, err = run(t, "", "profiles", "show", "anthropic", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = run(t, "", "profiles", "show", "nope")
	assert.Error(t, err)
}

func TestProfilesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profiles:
  - id: acme
    compat_adapter: true
    text:
      max_temperature: 0.5
`), 0o600))

	out, err := run(t, "", "--profiles", path, "profiles", "show", "acme", "-o", "json")
	require.NoError(t, err)
	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view), out)
	assert.Equal(t, 0.5, view["max_temperature"])
}

func TestCapabilitiesCmd(t *testing.T) {
	out, err := run(t, "", "capabilities", "anthropic")
	require.NoError(t, err)
	assert.Contains(t, out, "Capabilities for anthropic:")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "text.generate") {
			assert.True(t, strings.HasSuffix(line, "yes"), line)
		}
		if strings.Contains(line, "music.generate") {
			assert.True(t, strings.HasSuffix(line, "no"), line)
		}
	}

	_, err = run(t, "", "capabilities", "nope")
	assert.Error(t, err)
}
