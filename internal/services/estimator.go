package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
)

const geminiModel = "gemini-1.5-flash"

// Estimate is a draft for a manual record. It is never stored on its own.
type Estimate struct {
	Name       string          `json:"name"`
	Category   domain.Category `json:"category"`
	Calories   float64         `json:"calories"`
	Protein    float64         `json:"protein"`
	Confidence string          `json:"confidence"`
}

type Estimator interface {
	Estimate(ctx context.Context, description string, grams float64) (*Estimate, error)
}

type GeminiEstimator struct {
	client *genai.Client
	logger *slog.Logger
}

// NewGeminiEstimator returns an estimator that always fails with an
// external error when apiKey is empty.
func NewGeminiEstimator(ctx context.Context, apiKey string, logger *slog.Logger) (*GeminiEstimator, error) {
	e := &GeminiEstimator{logger: logger}
	if apiKey == "" {
		return e, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	e.client = client
	return e, nil
}

func (e *GeminiEstimator) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

func (e *GeminiEstimator) Estimate(ctx context.Context, description string, grams float64) (*Estimate, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperrors.NewValidationError("description is required")
	}
	if grams < 0 {
		return nil, apperrors.NewValidationError("grams must not be negative")
	}
	if e.client == nil {
		return nil, apperrors.NewExternalAPIError(fmt.Errorf("estimator is not configured"), "gemini")
	}

	model := e.client.GenerativeModel(geminiModel)
	resp, err := model.GenerateContent(ctx, genai.Text(estimatePrompt(description, grams)))
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "gemini")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, apperrors.NewExternalAPIError(fmt.Errorf("empty response"), "gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, apperrors.NewExternalAPIError(fmt.Errorf("unexpected response part %T", resp.Candidates[0].Content.Parts[0]), "gemini")
	}

	est, err := parseEstimate(string(text))
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "gemini")
	}
	e.logger.DebugContext(ctx, "Nutrient estimate received", "name", est.Name, "confidence", est.Confidence)
	return est, nil
}

func estimatePrompt(description string, grams float64) string {
	portion := "a typical single portion"
	if grams > 0 {
		portion = fmt.Sprintf("%.0f grams", grams)
	}
	return fmt.Sprintf(`You are a nutritionist. Estimate the energy and protein of the meal below.

MEAL: %s
PORTION: %s

Return ONLY a JSON object, no markdown, no text around it:
{
  "name": "short meal name",
  "category": "one of: Protein, Produce/Fiber, Carbohydrate, Other",
  "calories": 123.4,
  "protein": 12.3,
  "confidence": "low|medium|high"
}`, description, portion)
}

// parseEstimate decodes the model output, tolerating code fences or prose
// around the JSON object.
func parseEstimate(s string) (*Estimate, error) {
	jsonStr := extractJSON(s)
	if jsonStr == "" {
		return nil, fmt.Errorf("no valid JSON found in response")
	}

	var raw struct {
		Name       string  `json:"name"`
		Category   string  `json:"category"`
		Calories   float64 `json:"calories"`
		Protein    float64 `json:"protein"`
		Confidence string  `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if raw.Calories < 0 || raw.Protein < 0 {
		return nil, fmt.Errorf("negative nutrient values in response")
	}

	name := normalizeName(raw.Name)
	if name == "" {
		name = domain.ManualRecordName
	}
	return &Estimate{
		Name:       name,
		Category:   domain.NormalizeCategory(raw.Category),
		Calories:   raw.Calories,
		Protein:    raw.Protein,
		Confidence: strings.ToLower(strings.TrimSpace(raw.Confidence)),
	}, nil
}

// extractJSON returns the outermost {...} span of s, or "" when there is none.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
