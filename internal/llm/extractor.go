// Package llm turns free text or an audio clip into the model's raw answer.
// It does not interpret the answer; callers parse it.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/finance-bot/internal/config"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Content is what the model is asked to look at: either Text, or raw Data
// with its MIMEType (e.g. a voice note).
type Content struct {
	Text     string
	Data     []byte
	MIMEType string
}

// GenerateContentFunc matches genai's Models.GenerateContent.
type GenerateContentFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiExtractor implements Extractor with the Gemini API.
type GeminiExtractor struct {
	model    string
	generate GenerateContentFunc
}

// NewGeminiExtractor creates a Gemini client authenticated with cfg.APIKey.
func NewGeminiExtractor(ctx context.Context, cfg config.GeminiConfig) (*GeminiExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("NewGeminiExtractor: GOOGLE_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiExtractor: create genai client: %w", err)
	}

	return newGeminiExtractor(cfg.Model, client.Models.GenerateContent), nil
}

func newGeminiExtractor(model string, generate GenerateContentFunc) *GeminiExtractor {
	if model == "" {
		model = config.DefaultModel
	}
	return &GeminiExtractor{model: model, generate: generate}
}

// Extract sends instructions plus content as a single user turn and returns
// the text of the answer.
func (g *GeminiExtractor) Extract(ctx context.Context, content Content, instructions string) (string, error) {
	resp, err := g.generate(ctx, g.model, buildContents(content, instructions), nil)
	if err != nil {
		return "", fmt.Errorf("Extract: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Extract: %w", ErrEmptyResponse)
	}
	return text, nil
}

func buildContents(content Content, instructions string) []*genai.Content {
	parts := []*genai.Part{{Text: instructions}}
	if content.Text != "" {
		parts = append(parts, &genai.Part{Text: content.Text})
	}
	if len(content.Data) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: content.MIMEType,
				Data:     content.Data,
			},
		})
	}
	return []*genai.Content{{Role: "user", Parts: parts}}
}
