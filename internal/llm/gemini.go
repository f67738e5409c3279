package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiBackend calls the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini client for the given model.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

func (b *GeminiBackend) Complete(ctx context.Context, prompt string) (Response, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), nil)
	if err != nil {
		return Response{}, err
	}
	return fromGemini(resp), nil
}

func fromGemini(resp *genai.GenerateContentResponse) Response {
	var out Response
	if resp == nil {
		return out
	}
	for _, c := range resp.Candidates {
		if c == nil {
			continue
		}
		cand := Candidate{}
		if c.Content != nil {
			content := &Content{}
			for _, p := range c.Content.Parts {
				if p == nil {
					continue
				}
				content.Parts = append(content.Parts, Part{Text: p.Text})
			}
			cand.Content = content
		}
		out.Candidates = append(out.Candidates, cand)
	}
	return out
}
