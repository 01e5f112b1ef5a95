package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// Model used for all grading calls. Flash keeps feedback latency tolerable
// inside a request/response cycle.
const modelName = "gemini-2.5-flash"

// Client wraps the Gemini API for structured grading output. Every method
// treats the model as a black box that may fail or return malformed JSON.
type Client struct {
	genai  *genai.Client
	logger *slog.Logger
}

// New initializes the Gemini client from the environment
// (GEMINI_API_KEY / GOOGLE_API_KEY).
func New(ctx context.Context, logger *slog.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &Client{genai: client, logger: logger}, nil
}

// generateJSON asks the model for a JSON response and decodes it into out.
func (c *Client) generateJSON(ctx context.Context, prompt string, out any) error {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(float32(0.7)),
	}
	resp, err := c.genai.Models.GenerateContent(ctx, modelName, genai.Text(prompt), config)
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return fmt.Errorf("empty model response")
	}
	if err := json.Unmarshal([]byte(stripFences(text)), out); err != nil {
		return fmt.Errorf("parse model response: %w", err)
	}
	return nil
}

// stripFences removes a markdown code fence the model sometimes wraps JSON
// in, even when asked for a JSON mime type.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
