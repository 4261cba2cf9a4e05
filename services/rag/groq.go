package rag

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const generateTimeout = 30 * time.Second

// GroqGenerator answers through Groq's OpenAI-compatible chat
// completions endpoint. This is the default provider.
type GroqGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewGroqGenerator(baseURL, token, model string, maxTokens int, temperature float64) *GroqGenerator {
	clientConfig := openai.DefaultConfig(token)
	clientConfig.BaseURL = baseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: generateTimeout,
	}

	return &GroqGenerator{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
	}
}

func (g *GroqGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   g.maxTokens,
			Temperature: g.temperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
