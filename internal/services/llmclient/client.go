package llmclient

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Client is the minimal surface the gateways need from a language model.
// It exists so tests can inject a fake instead of the real Gemini API.
type Client interface {
	Generate(ctx context.Context, parts []*genai.Part) (string, error)
}

// Gemini calls the Google GenAI API. Credentials come from the environment
// (GEMINI_API_KEY or application default credentials).
type Gemini struct {
	model string
}

func NewGemini(model string) *Gemini {
	return &Gemini{model: model}
}

func (g *Gemini) Generate(ctx context.Context, parts []*genai.Part) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: parts,
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
