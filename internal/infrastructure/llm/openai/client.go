// Package openai implements the chat-model port against any
// OpenAI-compatible completion endpoint (OpenRouter, OpenAI, a local
// gateway). One single-turn call per completion, temperature pinned to
// zero so answer synthesis is deterministic.
package openai

import (
	"context"
	"fmt"
	"math"

	gopenai "github.com/sashabaranov/go-openai"
)

// go-openai drops Temperature from the request body when it is exactly 0
// (the field is tagged omitempty), which would leave the provider default
// in effect. The smallest positive float32 survives serialization and is
// zero for any practical sampling purpose.
const zeroTemperature = math.SmallestNonzeroFloat32

type Client struct {
	api   *gopenai.Client
	model string
}

func New(apiKey, baseURL, model string) *Client {
	cfg := gopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:   gopenai.NewClientWithConfig(cfg),
		model: model,
	}
}

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: zeroTemperature,
		Messages: []gopenai.ChatCompletionMessage{
			{Role: gopenai.ChatMessageRoleSystem, Content: system},
			{Role: gopenai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
