package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/policyscan/internal/httpclient"
)

const (
	// DefaultMaxTokens bounds the length of a reply.
	DefaultMaxTokens = 400

	// DefaultTemperature keeps answers close to the policy text.
	DefaultTemperature = 0.3

	// DefaultTimeout bounds one completion request.
	DefaultTimeout = 60 * time.Second

	// maxErrorBody is how much of an error response is kept in the error.
	maxErrorBody = 512
)

// Backend produces a completion for a single user prompt.
// A nil Backend means no model is configured.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Message is one chat message of a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIClient is a Backend for OpenAI-compatible chat completion endpoints.
type OpenAIClient struct {
	client      *http.Client
	baseURL     string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
}

// ClientOption configures an OpenAIClient.
type ClientOption func(*OpenAIClient)

// WithModel sets the model name sent with each request. Empty lets the
// server pick its default.
func WithModel(model string) ClientOption {
	return func(c *OpenAIClient) {
		c.model = model
	}
}

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) ClientOption {
	return func(c *OpenAIClient) {
		c.apiKey = key
	}
}

// WithMaxTokens sets the reply length limit.
func WithMaxTokens(n int) ClientOption {
	return func(c *OpenAIClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ClientOption {
	return func(c *OpenAIClient) {
		if t >= 0 {
			c.temperature = t
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *OpenAIClient) {
		if client != nil {
			c.client = client
		}
	}
}

// NewOpenAIClient creates a client for the endpoint at baseURL, for example
// "https://api.openai.com" or "http://localhost:1234". A trailing "/v1" is
// accepted.
func NewOpenAIClient(baseURL string, opts ...ClientOption) (*OpenAIClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNoEndpoint
	}
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	c := &OpenAIClient{
		client:      httpclient.New(httpclient.WithTimeout(DefaultTimeout)),
		baseURL:     baseURL,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteMessages(ctx, []Message{{Role: "user", Content: prompt}})
}

// CompleteMessages sends a full conversation and returns the reply text.
func (c *OpenAIClient) CompleteMessages(ctx context.Context, messages []Message) (string, error) {
	payload := map[string]any{
		"messages":    messages,
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
		"stream":      false,
	}
	if c.model != "" {
		payload["model"] = c.model
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return "", fmt.Errorf("%w: status %d (body unreadable: %v)", ErrBackendStatus, resp.StatusCode, err) //nolint:errorlint // one wrapped sentinel is enough
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrBackendStatus, resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode model response: %w", err)
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return result.Choices[0].Message.Content, nil
}
