// Package gemini is the text generation client used for digests.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash"

type Config struct {
	Model string
	// BaseURL overrides the API endpoint; empty uses the public Gemini API.
	BaseURL string
}

// Client generates text with a caller-chosen API key. One genai client is
// kept per key.
type Client struct {
	model   string
	baseURL string

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func NewClient(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		model:   model,
		baseURL: cfg.BaseURL,
		clients: make(map[string]*genai.Client),
	}
}

func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt using credential as the API key and returns the text
// of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt, credential string) (string, error) {
	if credential == "" {
		return "", errors.New("empty api key")
	}

	client, err := c.clientFor(ctx, credential)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty response from gemini")
	}

	return text, nil
}

func (c *Client) clientFor(ctx context.Context, apiKey string) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[apiKey]; ok {
		return client, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	c.clients[apiKey] = client
	return client, nil
}

// MaskKey shows only the last four characters of a key for logging.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return "..." + key
	}
	return "..." + key[len(key)-4:]
}
