// Package openai translates text and identifies songs with OpenAI-compatible chat models.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"livetranslate/internal/ports"
	"livetranslate/internal/providers/prompt"
)

const (
	defaultModel = "gpt-4o-mini"

	systemPrompt = "You are a live interpreter. Answer with the requested text only."
)

// Config controls the OpenAI client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
}

// Client implements ports.Translator and ports.SongIdentifier.
type Client struct {
	client *openai.Client
	model  string
	hasKey bool
}

func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	client := openai.NewClient(opts...)
	return &Client{client: &client, model: cfg.Model, hasKey: strings.TrimSpace(cfg.APIKey) != ""}
}

func (c *Client) Translate(ctx context.Context, req ports.TranslationRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", errors.New("nothing to translate")
	}
	text, err := c.complete(ctx, prompt.Translation(req))
	if err != nil {
		return "", fmt.Errorf("openai translate: %w", err)
	}
	if text == "" {
		return "", errors.New("openai translate: empty response")
	}
	return text, nil
}

func (c *Client) Identify(ctx context.Context, lyrics string) (string, error) {
	text, err := c.complete(ctx, prompt.Song(lyrics))
	if err != nil {
		return "", fmt.Errorf("openai identify: %w", err)
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, text string) (string, error) {
	if !c.hasKey {
		return "", errors.New("OPENAI_API_KEY is not configured")
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
