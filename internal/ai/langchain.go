package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const langChainSystemPrompt = "You analyse project management standards (PMBOK, PRINCE2, ISO 21500/21502). " +
	"Ground every statement in the excerpts you are given and reply with JSON only."

// LangChainConfig configures an OpenAI-compatible endpoint reached through langchaingo.
type LangChainConfig struct {
	Token       string
	Model       string
	BaseURL     string
	Temperature float64
}

// LangChain is a Generator backed by any langchaingo llms.Model.
type LangChain struct {
	model       llms.Model
	temperature float64
}

// NewLangChain builds an OpenAI-compatible langchaingo client. A blank
// token is sent as "none" for local servers that do not authenticate.
func NewLangChain(cfg LangChainConfig) (*LangChain, error) {
	token := cfg.Token
	if token == "" {
		token = "none"
	}
	opts := []openai.Option{openai.WithToken(token)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain client: %w", err)
	}
	return NewLangChainWithModel(client, cfg.Temperature), nil
}

// NewLangChainWithModel wraps an existing model.
func NewLangChainWithModel(model llms.Model, temperature float64) *LangChain {
	return &LangChain{model: model, temperature: temperature}
}

func (g *LangChain) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt cannot be empty")
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, langChainSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := g.model.GenerateContent(ctx, content, llms.WithTemperature(g.temperature))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned from model")
	}
	return resp.Choices[0].Content, nil
}

func (g *LangChain) Name() string { return "langchain" }
