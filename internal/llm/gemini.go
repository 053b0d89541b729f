package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Config holds the Gemini connection settings
type Config struct {
	APIKey  string
	BaseURL string // override for tests and proxies
	Timeout time.Duration
}

// GeminiClient talks to the Gemini API. It implements ModelLister and Generator.
type GeminiClient struct {
	client *genai.Client
	config Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// ListModels returns the names of all models visible to the API key
func (c *GeminiClient) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var names []string
	for model, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		if model != nil && model.Name != "" {
			names = append(names, model.Name)
		}
	}
	return names, nil
}

// Generate calls generateContent on the model and returns the response text
func (c *GeminiClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no text in response")
	}
	return text, nil
}
