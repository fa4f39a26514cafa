// Package gemini translates text and identifies songs with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"livetranslate/internal/ports"
	"livetranslate/internal/providers/prompt"
)

const defaultModel = "gemini-2.0-flash"

// Config controls the Gemini client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client implements ports.Translator and ports.SongIdentifier.
type Client struct {
	cfg Config

	once   sync.Once
	client *genai.Client
	err    error
}

func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Client{cfg: cfg}
}

func (c *Client) Translate(ctx context.Context, req ports.TranslationRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", errors.New("nothing to translate")
	}
	text, err := c.generate(ctx, prompt.Translation(req))
	if err != nil {
		return "", fmt.Errorf("gemini translate: %w", err)
	}
	if text == "" {
		return "", errors.New("gemini translate: empty response")
	}
	return text, nil
}

func (c *Client) Identify(ctx context.Context, lyrics string) (string, error) {
	text, err := c.generate(ctx, prompt.Song(lyrics))
	if err != nil {
		return "", fmt.Errorf("gemini identify: %w", err)
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, text string) (string, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, []*genai.Content{
		{Parts: []*genai.Part{{Text: text}}, Role: "user"},
	}, nil)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func (c *Client) connect(ctx context.Context) (*genai.Client, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is not configured")
	}
	c.once.Do(func() {
		clientCfg := &genai.ClientConfig{APIKey: c.cfg.APIKey, Backend: genai.BackendGeminiAPI}
		if c.cfg.BaseURL != "" {
			clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.cfg.BaseURL}
		}
		c.client, c.err = genai.NewClient(ctx, clientCfg)
	})
	return c.client, c.err
}
