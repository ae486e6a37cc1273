package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is used when no model is configured
	DefaultChatModel = openai.GPT4oMini
	// DefaultMaxTokens bounds a single completion
	DefaultMaxTokens = 1500
	// DefaultTemperature keeps answers close to the supplied excerpts
	DefaultTemperature = 0.2
)

var (
	// ErrEmptyPrompt is returned when the prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrNoChoices is returned when the API answers without any choice
	ErrNoChoices = errors.New("no completion choices returned")
)

// systemPrompt frames every request as project-management standards analysis.
const systemPrompt = "You are an expert in project management standards (PMBOK, PRINCE2, ISO 21500/21502). " +
	"Answer only from the provided excerpts and reply with valid JSON when asked to."

// ChatAPI defines the interface for chat completion
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, system, prompt string) (string, error)
}

// Client wraps the OpenAI API client
type Client struct {
	api ChatAPI
}

type OpenAIAdapter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &OpenAIAdapter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: DefaultTemperature,
	}
}

// CreateChatCompletion calls the OpenAI API with a system and a user message
func (a *OpenAIAdapter) CreateChatCompletion(ctx context.Context, system, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	return &Client{api: NewOpenAIAdapter(cfg)}
}

// NewClientWithAPI creates a client over an arbitrary ChatAPI implementation.
func NewClientWithAPI(api ChatAPI) *Client {
	return &Client{api: api}
}

// Generate sends prompt and returns the model's raw text answer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	text, err := c.api.CreateChatCompletion(ctx, systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	return text, nil
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string {
	return "openai"
}
