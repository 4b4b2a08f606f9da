package summarize

import (
	"bytes"
	"cmp"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nao1215/aptscout/internal/model"
	"github.com/nao1215/aptscout/internal/normalize"
)

// DefaultPrompt is the instruction sent as the system message.
//
//go:embed prompts/summary.txt
var DefaultPrompt string

// Default model settings.
const (
	DefaultModel       = openai.GPT4oMini
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 1000
)

var (
	// ErrNoAPIKey is returned when a client is built without an API key.
	ErrNoAPIKey = errors.New("no OpenAI API key configured: set OPENAI_API_KEY in the environment or a .env file")

	// ErrEmptyResponse is returned when the model answers with no choices
	// or empty content.
	ErrEmptyResponse = errors.New("empty response from language model")

	// ErrInvalidSummary is returned when the model's answer is not a JSON object.
	ErrInvalidSummary = errors.New("language model did not return a JSON object")
)

// Summarizer produces a summary for a normalized listing.
type Summarizer interface {
	Summarize(ctx context.Context, ad *model.AdRecord) (map[string]any, error)
}

// Config holds the settings of an OpenAI client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Prompt      string
	HTTPClient  *http.Client
}

// NewConfig returns a Config with default model settings and prompt.
func NewConfig(apiKey string) Config {
	return Config{
		APIKey:      apiKey,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Prompt:      DefaultPrompt,
	}
}

// Client summarizes listings with the OpenAI chat completion API.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	prompt      string
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient builds a client from cfg. Empty settings fall back to defaults.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}

	c := &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cmp.Or(cfg.Model, DefaultModel),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		prompt:      cmp.Or(cfg.Prompt, DefaultPrompt),
		logger:      slog.Default(),
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Summarize sends the allow-listed fields of ad, formatted as indented
// JSON, to the model and returns the decoded answer.
func (c *Client) Summarize(ctx context.Context, ad *model.AdRecord) (map[string]any, error) {
	text, err := normalize.FormatIndent(normalize.FilterProps(ad), "  ")
	if err != nil {
		return nil, err
	}
	return c.Complete(ctx, string(text))
}

// Complete sends text as the user message and decodes the model's answer
// as a JSON object. Numbers keep their textual form.
func (c *Client) Complete(ctx context.Context, text string) (map[string]any, error) {
	c.logger.Debug("requesting summary", "model", c.model, "input_bytes", len(text))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.prompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, ErrEmptyResponse
	}
	c.logger.Debug("summary received", "tokens", resp.Usage.TotalTokens)
	return DecodeSummary([]byte(content))
}

// DecodeSummary parses a model answer into a JSON object.
func DecodeSummary(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var summary map[string]any
	if err := dec.Decode(&summary); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSummary, err)
	}
	if summary == nil {
		return nil, ErrInvalidSummary
	}
	return summary, nil
}
