package tokens

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

func userRequest(model, text string) *domain.ChatRequest {
	return &domain.ChatRequest{
		Model:    model,
		Messages: []domain.Message{{Role: domain.RoleUser, Content: domain.Text(text)}},
	}
}

func TestEstimator_CountTokens(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		name      string
		req       *domain.ChatRequest
		minTokens int
		maxTokens int
	}{
		{
			name:      "simple message",
			req:       userRequest("test-model", "Hello, how are you?"),
			minTokens: 5,
			maxTokens: 15,
		},
		{
			name: "multiple messages",
			req: &domain.ChatRequest{
				Model: "test-model",
				Messages: []domain.Message{
					{Role: domain.RoleSystem, Content: domain.Text("You are a helpful assistant.")},
					{Role: domain.RoleUser, Content: domain.Text("What is 2+2?")},
					{Role: domain.RoleAssistant, Content: domain.Text("2+2 equals 4.")},
				},
			},
			minTokens: 12,
			maxTokens: 30,
		},
		{
			name: "tools and tool traffic",
			req: &domain.ChatRequest{
				Model: "test-model",
				Messages: []domain.Message{
					{Role: domain.RoleAssistant, Content: []domain.ContentPart{}, ToolCalls: []domain.ToolCall{{ID: "c1", Name: "calculator", Arguments: `{"expr":"2+2"}`}}},
					{Role: domain.RoleTool, Content: []domain.ContentPart{}, ToolResults: []domain.ToolResult{{ToolCallID: "c1", Content: "4"}}},
				},
				Tools: []domain.Tool{{Name: "calculator", Description: "A simple calculator", Parameters: json.RawMessage(`{"type":"object"}`)}},
			},
			minTokens: 15,
			maxTokens: 40,
		},
		{
			name:      "empty request",
			req:       &domain.ChatRequest{Model: "test-model"},
			minTokens: 0,
			maxTokens: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := e.CountTokens(context.Background(), tt.req)
			require.NoError(t, err)
			assert.True(t, count.Estimated)
			assert.Equal(t, tt.req.Model, count.Model)
			assert.GreaterOrEqual(t, count.InputTokens, tt.minTokens)
			assert.LessOrEqual(t, count.InputTokens, tt.maxTokens)
		})
	}
}

func TestEstimatorIgnoresImages(t *testing.T) {
	e := NewEstimator()
	req := &domain.ChatRequest{Messages: []domain.Message{{
		Role:    domain.RoleUser,
		Content: []domain.ContentPart{domain.ImagePart{Source: domain.SourceData, Data: "aGVsbG8gd29ybGQgaGVsbG8gd29ybGQ="}},
	}}}
	count, err := e.CountTokens(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, count.InputTokens)
}

func TestOpenAICounter_CountTokens(t *testing.T) {
	c := NewOpenAICounter()

	tests := []struct {
		name      string
		req       *domain.ChatRequest
		minTokens int
		maxTokens int
	}{
		{"simple message", userRequest("gpt-4o", "Hello, how are you today?"), 8, 20},
		{"code snippet", userRequest("gpt-4o", "def hello(): print('Hello, World!')"), 10, 30},
		{"common words", userRequest("gpt-4o", "The quick brown fox jumps over the lazy dog."), 12, 25},
		{"legacy encoding", userRequest("gpt-3.5-turbo", "123456789 and 987654321"), 8, 20},
		{"unknown gpt family", userRequest("gpt-9-experimental", "getCustomerById calculateTotalPrice"), 8, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := c.CountTokens(context.Background(), tt.req)
			require.NoError(t, err)
			assert.False(t, count.Estimated)
			assert.GreaterOrEqual(t, count.InputTokens, tt.minTokens)
			assert.LessOrEqual(t, count.InputTokens, tt.maxTokens)
		})
	}
}

func TestOpenAICounter_ToolsAddTokens(t *testing.T) {
	c := NewOpenAICounter()
	base := userRequest("gpt-4o", "What's the weather?")
	withTools := userRequest("gpt-4o", "What's the weather?")
	withTools.Tools = []domain.Tool{{
		Name:        "get_weather",
		Description: "Look up the weather for a city",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}}}`),
	}}

	a, err := c.CountTokens(context.Background(), base)
	require.NoError(t, err)
	b, err := c.CountTokens(context.Background(), withTools)
	require.NoError(t, err)
	assert.Greater(t, b.InputTokens, a.InputTokens+tokensPerTool)
}

func TestOpenAICounter_CountText(t *testing.T) {
	n, err := NewOpenAICounter().CountText("gpt-4o", "hello world")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOpenAICounter_SupportsModel(t *testing.T) {
	c := NewOpenAICounter()
	for _, model := range []string{"gpt-4o", "GPT-5-mini", "o3-mini", "o4-mini", "text-embedding-3-small", "davinci"} {
		assert.True(t, c.SupportsModel(model), model)
	}
	for _, model := range []string{"claude-sonnet-4-5", "gemini-2.5-pro", "llama-3"} {
		assert.False(t, c.SupportsModel(model), model)
	}
}

func TestRegistry(t *testing.T) {
	r := Default()

	assert.IsType(t, &OpenAICounter{}, r.GetCounter("gpt-4o"))
	assert.IsType(t, &Estimator{}, r.GetCounter("claude-sonnet-4-5"))

	count, err := r.CountTokens(context.Background(), userRequest("claude-sonnet-4-5", "Hello there, friend"))
	require.NoError(t, err)
	assert.True(t, count.Estimated)

	count, err = r.CountTokens(context.Background(), userRequest("gpt-4o", "Hello there, friend"))
	require.NoError(t, err)
	assert.False(t, count.Estimated)

	r.SetFallback(nil)
	_, err = r.CountTokens(context.Background(), userRequest("claude-sonnet-4-5", "x"))
	assert.Error(t, err)
}

func TestModelMatcher(t *testing.T) {
	m := NewModelMatcher([]string{"gpt-"}, []string{"ada"})
	assert.True(t, m.Matches("gpt-4"))
	assert.True(t, m.Matches("ADA"))
	assert.False(t, m.Matches("adam"))
	assert.False(t, m.Matches("my-gpt-4"))
}
