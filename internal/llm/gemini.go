package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	app_errors "novamind/backend/internal/errors"
)

// geminiProvider calls the Google Generative Language API. Each Generate call
// is a single generateContent request; per-session context lives in the
// prompt the service builds.
type geminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string) (Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("could not create genai client: %w", err)
	}
	return &geminiProvider{client: client}, nil
}

func (p *geminiProvider) Generate(ctx context.Context, prompt, modelID string) (string, error) {
	model := p.client.GenerativeModel(modelID)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason == genai.BlockReasonSafety {
		return "", app_errors.ErrSafetyBlocked
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety:
		return "", app_errors.ErrSafetyBlocked
	case genai.FinishReasonRecitation:
		return "", app_errors.ErrRecitationBlocked
	}

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini candidate had no content")
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("gemini candidate had no text parts")
	}
	return out.String(), nil
}

// classifyGeminiError maps transport-level failures onto the application's
// error taxonomy. Anything unrecognized stays a generic wrapped error.
func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return &QuotaError{Detail: apiErr.Message}
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(msg, "Resource has been exhausted"):
		return &QuotaError{}
	case strings.Contains(msg, "SAFETY"):
		return app_errors.ErrSafetyBlocked
	case strings.Contains(msg, "RECITATION"):
		return app_errors.ErrRecitationBlocked
	}
	return fmt.Errorf("gemini request failed: %w", err)
}
