package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 120 * time.Second

// ErrTokenExceeded reports that the endpoint rejected the request because the
// prompt was too large. Callers may split the input and retry the halves.
var ErrTokenExceeded = errors.New("token limit exceeded")

// ErrEmptyCompletion reports a well-formed response carrying no usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// Provider selects the request/response dialect of the endpoint.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// ParseProvider converts a configuration string into a known Provider.
func ParseProvider(value string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "openai", "":
		return ProviderOpenAI, nil
	case "gemini":
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("llm: unsupported provider %q", value)
	}
}

// Config captures the runtime settings required to talk to the endpoint.
type Config struct {
	Provider Provider
	BaseURL  string
	Model    string
	Token    string
	Timeout  time.Duration
}

// Client issues chat completion requests against an OpenAI-compatible or
// Gemini endpoint. One request per call; retry policy belongs to the caller.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("llm: base url required")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm: model required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Complete sends one chat completion request and returns the response text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", errors.New("llm: user prompt required")
	}
	switch c.cfg.Provider {
	case ProviderGemini:
		return c.completeGemini(ctx, systemPrompt, userPrompt)
	default:
		return c.completeOpenAI(ctx, systemPrompt, userPrompt)
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (c *Client) completeOpenAI(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	payload := chatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   false,
	}

	body, err := c.post(ctx, c.cfg.BaseURL+"/chat/completions", payload, func(req *http.Request) {
		if c.cfg.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		}
	})
	if err != nil {
		return "", err
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if completion.Error != nil {
		msg := strings.TrimSpace(completion.Error.Message)
		if looksLikeTokenLimit(msg) {
			return "", fmt.Errorf("%w: %s", ErrTokenExceeded, msg)
		}
		return "", fmt.Errorf("llm: api error: %s", msg)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (c *Client) completeGemini(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	// Gemini has no dedicated system role; the system prompt is prepended to
	// the user turn.
	prompt := userPrompt
	if strings.TrimSpace(systemPrompt) != "" {
		prompt = systemPrompt + "\n\n" + userPrompt
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.Token)
	body, err := c.post(ctx, endpoint, payload, nil)
	if err != nil {
		return "", err
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
		// A block on the prompt itself is almost always the prompt outgrowing
		// the context window; surface it as such so callers can split.
		return "", fmt.Errorf("%w: prompt blocked: %s", ErrTokenExceeded, response.PromptFeedback.BlockReason)
	}
	if len(response.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}
	var builder strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		builder.WriteString(part.Text)
	}
	content := strings.TrimSpace(builder.String())
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, decorate func(*http.Request)) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("llm: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("llm: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		trimmed := strings.TrimSpace(string(body))
		if resp.StatusCode == http.StatusRequestEntityTooLarge || looksLikeTokenLimit(trimmed) {
			return nil, fmt.Errorf("%w: http %d: %s", ErrTokenExceeded, resp.StatusCode, trimmed)
		}
		return nil, fmt.Errorf("llm: http %d: %s", resp.StatusCode, trimmed)
	}
	return body, nil
}

func looksLikeTokenLimit(message string) bool {
	lowered := strings.ToLower(message)
	for _, marker := range []string{"context length", "maximum context", "token limit", "too many tokens", "token_exceeded"} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
