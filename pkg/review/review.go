// Package review generates written feedback on a finished interview
// transcript using a Gemini model.
package review

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/txn2/interview-platform/pkg/session"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-pro"

const (
	promptHeader = "以下の面接履歴に基づいて、応募者のパフォーマンスを詳細にレビューしてください。" +
		"改善点、強み、全体的な評価を含めてください。\n\n面接履歴:\n"

	systemInstruction = "あなたは経験豊富な技術面接官です。日本語で簡潔かつ具体的にフィードバックしてください。"
)

var (
	// ErrEmptyHistory is returned when there is nothing to review.
	ErrEmptyHistory = errors.New("interview history is empty")

	// ErrReviewFailed wraps model failures.
	ErrReviewFailed = errors.New("review generation failed")

	// ErrRateLimited is returned when the model provider throttles the request.
	ErrRateLimited = errors.New("review rate limited")
)

// Config configures the Gemini reviewer.
type Config struct {
	APIKey string
	Model  string
}

// contentGenerator is the subset of *genai.Models the reviewer uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiReviewer reviews transcripts with the Gemini API.
type GeminiReviewer struct {
	models contentGenerator
	model  string
}

// NewGeminiReviewer creates a reviewer backed by the Gemini API.
func NewGeminiReviewer(ctx context.Context, cfg Config) (*GeminiReviewer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return newGeminiReviewer(client.Models, cfg.Model), nil
}

func newGeminiReviewer(models contentGenerator, model string) *GeminiReviewer {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiReviewer{models: models, model: model}
}

// Model returns the model id used for reviews.
func (r *GeminiReviewer) Model() string {
	return r.model
}

// Review returns the model's feedback on history.
func (r *GeminiReviewer) Review(ctx context.Context, history []session.QA) (string, error) {
	if len(history) == 0 {
		return "", ErrEmptyHistory
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: BuildPrompt(history)}},
	}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}

	result, err := r.models.GenerateContent(ctx, r.model, contents, config)
	if err != nil {
		return "", mapGeminiError(err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrReviewFailed)
	}
	return text, nil
}

// BuildPrompt renders the review request for history.
func BuildPrompt(history []session.QA) string {
	entries := make([]string, 0, len(history))
	for _, qa := range history {
		entries = append(entries, "質問: "+qa.Question+"\n回答: "+qa.Answer)
	}
	return promptHeader + strings.Join(entries, "\n\n")
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %w", ErrReviewFailed, err)
}
