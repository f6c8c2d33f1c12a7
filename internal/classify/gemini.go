package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const classifyPrompt = `You are looking at a photo or screenshot of an Ethiopian payment receipt. Identify which institution issued it and read the transaction identifiers.

Institutions and their markers:
- "cbe": Commercial Bank of Ethiopia transfer receipt; reference starts with FT.
- "telebirr": Ethio Telecom telebirr receipt; green branding, receipt number is 10 alphanumeric characters.
- "dashen": Dashen Bank super-app receipt.
- "cbebirr": CBE Birr mobile money receipt; shows a 2519-prefixed phone number.
- "abyssinia": Bank of Abyssinia receipt or SMS screenshot.

Return ONLY valid JSON in this exact format:
{
  "institution": "cbe",
  "reference": "FT25130012AB",
  "account_suffix": "",
  "phone": ""
}

Important:
- institution must be one of: cbe, telebirr, dashen, cbebirr, abyssinia
- reference is the transaction reference or receipt number exactly as printed
- account_suffix is the visible trailing digits of the payer account, if any
- phone is the payer phone number in 2519XXXXXXXX form, if visible
- Use "" for anything you cannot read
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// Gemini implements Classifier using a Google Gemini vision model.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini-backed classifier.
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Classify sends the prepared photo to the model and parses its JSON
// verdict.
func (g *Gemini) Classify(ctx context.Context, imageData []byte, contentType string) (*Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pngData, err := preparePNG(imageData, contentType)
	if err != nil {
		return nil, err
	}

	resp, err := g.model.GenerateContent(ctx,
		genai.ImageData("png", pngData),
		genai.Text(classifyPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	classification, err := parseClassification(sb.String())
	if err != nil {
		return nil, fmt.Errorf("parsing classification: %w", err)
	}
	return classification, nil
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
