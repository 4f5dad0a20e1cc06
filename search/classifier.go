// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/go-a2a/patent-analyst/warehouse"
)

// Classifier decides whether a search query is about a technical topic.
type Classifier interface {
	IsTechnical(ctx context.Context, query string) (bool, error)
}

// answerIsYes reports whether a model answer to the classification prompt is affirmative.
func answerIsYes(answer string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(answer)), "yes")
}

// BigQueryClassifier classifies queries with the remote model behind ML.GENERATE_TEXT.
type BigQueryClassifier struct {
	cfg    Config
	client warehouse.Querier
}

var _ Classifier = (*BigQueryClassifier)(nil)

// NewBigQueryClassifier returns a [BigQueryClassifier] using cfg.ClassificationModel.
func NewBigQueryClassifier(cfg Config, client warehouse.Querier) *BigQueryClassifier {
	return &BigQueryClassifier{cfg: cfg, client: client}
}

// IsTechnical implements [Classifier].
func (c *BigQueryClassifier) IsTechnical(ctx context.Context, query string) (bool, error) {
	if c.client == nil {
		return false, warehouse.ErrNoClient
	}

	stmt := c.cfg.ClassificationStatement(query)
	rows, err := c.client.Query(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		return false, fmt.Errorf("classify query: %w", err)
	}
	for _, row := range rows {
		if answerIsYes(row.String("ml_generate_text_llm_result")) {
			return true, nil
		}
	}
	return false, nil
}

// GeminiClassifier classifies queries by calling Gemini directly.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

var _ Classifier = (*GeminiClassifier)(nil)

// NewGeminiClassifier creates a [GeminiClassifier] for model.
//
// With an API key in cc the Gemini API is used; otherwise Vertex AI in cc.Project and cc.Location.
func NewGeminiClassifier(ctx context.Context, model string, cc *genai.ClientConfig) (*GeminiClassifier, error) {
	if cc.Backend == genai.BackendUnspecified {
		cc.Backend = genai.BackendVertexAI
		if cc.APIKey != "" {
			cc.Backend = genai.BackendGeminiAPI
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClassifier{
		client: client,
		model:  model,
	}, nil
}

// IsTechnical implements [Classifier].
func (c *GeminiClassifier) IsTechnical(ctx context.Context, query string) (bool, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(classificationPrompt+query), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: 16,
	})
	if err != nil {
		return false, fmt.Errorf("gemini API error: %w", err)
	}
	return answerIsYes(resp.Text()), nil
}
