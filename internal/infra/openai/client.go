package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultTimeout   = 4 * time.Second
	defaultMaxTokens = 80
)

// ErrNoChoices is returned when the backend answers without any completion
var ErrNoChoices = errors.New("no response choices")

// Message is one chat message sent to the backend
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// Client is a thin OpenAI-compatible chat client with a strict timeout and token ceiling
type Client struct {
	client    *openai.Client
	model     string
	timeout   time.Duration
	maxTokens int
}

// NewClient creates a new client. An empty baseURL uses the OpenAI endpoint.
func NewClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *Client {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client:    openai.NewClientWithConfig(config),
		model:     model,
		timeout:   timeout,
		maxTokens: maxTokens,
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Chat sends the conversation and returns the first completion.
// The call is bounded by the smaller of the client timeout and timeout.
func (c *Client) Chat(ctx context.Context, messages []Message, timeout time.Duration) (string, error) {
	if timeout <= 0 || timeout > c.timeout {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: 0.8, // varied small talk
		MaxTokens:   c.maxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		return "", fmt.Errorf("chat completion: truncated at %d tokens", c.maxTokens)
	}

	return resp.Choices[0].Message.Content, nil
}
