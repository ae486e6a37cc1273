package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockChatAPI is a mock for the OpenAI chat API
type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

func TestClient_Generate_Success(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewClientWithAPI(mockAPI)

	ctx := context.Background()
	prompt := "Compare risk management in PMBOK and PRINCE2."

	mockAPI.On("CreateChatCompletion", ctx, systemPrompt, prompt).Return(`{"summary":"ok"}`, nil)

	text, err := client.Generate(ctx, prompt)

	assert.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, text)
	mockAPI.AssertExpectations(t)
}

func TestClient_Generate_EmptyPrompt(t *testing.T) {
	client := NewClient("")

	text, err := client.Generate(context.Background(), "   ")

	assert.Equal(t, ErrEmptyPrompt, err)
	assert.Empty(t, text)
}

func TestClient_Generate_APIError(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewClientWithAPI(mockAPI)

	ctx := context.Background()
	mockAPI.On("CreateChatCompletion", ctx, systemPrompt, "prompt").Return("", errors.New("API rate limit exceeded"))

	text, err := client.Generate(ctx, "prompt")

	assert.Error(t, err)
	assert.Empty(t, text)
	assert.Contains(t, err.Error(), "failed to create chat completion")
	mockAPI.AssertExpectations(t)
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "test-api-key"})

	adapter, ok := client.api.(*OpenAIAdapter)
	assert.True(t, ok)
	assert.Equal(t, DefaultChatModel, adapter.model)
	assert.Equal(t, DefaultMaxTokens, adapter.maxTokens)
	assert.Equal(t, "openai", client.Name())
}
