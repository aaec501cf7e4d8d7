package interpret

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// draftSchema constrains the model's answer to exactly the four draft
// fields. Anything outside it is rejected by the decode step anyway; the
// schema just makes conforming answers far more likely.
var draftSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"kind": {
			Type:        genai.TypeString,
			Description: "Tipo: 'receita' ou 'despesa'",
		},
		"amount": {
			Type:        genai.TypeNumber,
			Description: "Valor numérico da transação",
		},
		"category": {
			Type:        genai.TypeString,
			Description: "Categoria da lista fornecida",
		},
		"description": {
			Type:        genai.TypeString,
			Description: "Breve descrição",
		},
	},
	Required: []string{"kind", "amount", "category", "description"},
}

// GeminiModel calls the Gemini API for structured extraction.
type GeminiModel struct {
	model  string
	apiKey string
}

// NewGeminiModel returns a model bound to the given Gemini model name.
// An empty apiKey defers to the environment credentials the genai client
// resolves itself.
func NewGeminiModel(model, apiKey string) *GeminiModel {
	return &GeminiModel{model: model, apiKey: apiKey}
}

// GenerateDraftJSON implements the Model interface.
func (m *GeminiModel) GenerateDraftJSON(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      m.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("GenerateDraftJSON: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   draftSchema,
	}

	resp, err := client.Models.GenerateContent(ctx, m.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("GenerateDraftJSON: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("GenerateDraftJSON: empty response from model")
	}

	return rawText, nil
}
