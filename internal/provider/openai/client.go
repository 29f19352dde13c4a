// Package openai provides the hosted-API embedding and generation provider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/parchment-ai/parchment/internal/domain"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
	// DefaultChatModel is the OpenAI model used for answer generation
	DefaultChatModel = openai.GPT4oMini
	// DefaultTimeout bounds every provider call
	DefaultTimeout = 30 * time.Second
)

// ErrNoAPIKey is returned when the OpenAI API key is not set
var ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")

// EmbeddingAPI defines the interface for the embedding endpoint
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// ChatAPI defines the interface for the chat completion endpoint
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, prompt string) (string, error)
}

// Client wraps the OpenAI API behind the provider capability: embed text,
// generate text. Failures are mapped to the domain provider taxonomy.
type Client struct {
	embeddings EmbeddingAPI
	chat       ChatAPI
	timeout    time.Duration
}

// Adapter is the concrete binding to the go-openai SDK.
type Adapter struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
	chatModel      string
}

// NewAdapter creates an Adapter for the given credentials and models.
func NewAdapter(apiKey, embeddingModel, chatModel string) *Adapter {
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	return &Adapter{
		client:         openai.NewClient(apiKey),
		embeddingModel: openai.EmbeddingModel(embeddingModel),
		chatModel:      chatModel,
	}
}

// CreateEmbeddings calls the OpenAI API to create an embedding for text.
func (a *Adapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.embeddingModel,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding data returned: %w", domain.ErrProviderError)
	}

	return resp.Data[0].Embedding, nil
}

// CreateChatCompletion calls the OpenAI API to generate an answer.
func (a *Adapter) CreateChatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned: %w", domain.ErrProviderError)
	}

	return resp.Choices[0].Message.Content, nil
}

// Config holds OpenAI provider configuration.
type Config struct {
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
}

// NewClient creates a provider client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a provider client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	adapter := NewAdapter(cfg.APIKey, cfg.EmbeddingModel, cfg.ChatModel)
	return &Client{
		embeddings: adapter,
		chat:       adapter,
		timeout:    timeout,
	}
}

// NewClientFromEnv creates a provider client using the OPENAI_API_KEY
// environment variable.
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// Embed generates an embedding for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "text cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	embedding, err := c.embeddings.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, classify(err)
	}
	return embedding, nil
}

// Generate produces answer text for the given prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "prompt cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	answer, err := c.chat.CreateChatCompletion(ctx, prompt)
	if err != nil {
		return "", classify(err)
	}
	return answer, nil
}

// classify maps SDK and transport errors onto the domain provider taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}

	// Already classified by the adapter.
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("openai: %v: %w", apiErr, domain.ErrRateLimited)
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("openai: %v: %w", apiErr, domain.ErrProviderUnavailable)
		default:
			return fmt.Errorf("openai: %v: %w", apiErr, domain.ErrProviderError)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("openai: %v: %w", err, domain.ErrProviderUnavailable)
	}

	// Network and connection failures.
	return fmt.Errorf("openai: %v: %w", err, domain.ErrProviderUnavailable)
}
