package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiGenerator implements Generator on the Gemini API with JSON
// structured output enforced by a response schema.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       model,
		temperature: 0.7,
	}, nil
}

// Generate sends one structured-output request and returns the raw JSON
// text. Quota rejections come back as *RateLimitError, blocked or empty
// candidates as ErrEmptyResponse.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](g.temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, classify(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return []byte(text), nil
}

// Model returns the model name in use.
func (g *GeminiGenerator) Model() string { return g.model }

// classify maps SDK errors onto the retry taxonomy.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return &RateLimitError{Err: err}
		}
	}
	return fmt.Errorf("generation request failed: %w", err)
}
