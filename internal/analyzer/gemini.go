package analyzer

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const systemPrompt = `You are a **Market Intelligence Analyst** for TradeQuest, a finance education platform.

Your job is to analyze a real financial news article and produce a structured market-impact alert.

You will receive a news headline, summary, source, and related symbols.

You MUST respond with a valid JSON object with EXACTLY these keys:
{
  "severity": "critical" | "high" | "medium",
  "impact_summary": "1-2 sentence summary of the market impact and why traders should pay attention.",
  "affected_sectors": ["sector1", "sector2"],
  "recommended_action": "A concise 1-sentence recommendation for traders.",
  "asset_name": "The primary ticker or asset mentioned (e.g. 'AAPL', 'S&P 500', 'Bitcoin')"
}

RULES for severity:
- "critical": Events likely to cause >5% swings, systemic risks, or broad market panic
- "high": Events likely to cause 2-5% moves or significant sector rotation
- "medium": Events with moderate impact on specific assets or sectors

If no specific ticker is mentioned, use the most relevant broad market indicator.
Keep each field concise and actionable. Max 2 sectors in affected_sectors.`

const modelPrimer = "Ready. Send me a news article to analyze."

// GeminiGenerator runs the analysis conversation against the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGemini creates a generator bound to the given model.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate sends the primed three-turn conversation and returns the raw
// JSON text of the verdict.
func (g *GeminiGenerator) Generate(ctx context.Context, userPrompt string) (string, error) {
	temperature := float32(0.5)
	topP := float32(0.85)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		TopP:             &topP,
		MaxOutputTokens:  512,
		ResponseMIMEType: "application/json",
	}

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: systemPrompt}}},
		{Role: "model", Parts: []*genai.Part{{Text: modelPrimer}}},
		{Role: "user", Parts: []*genai.Part{{Text: userPrompt}}},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}
