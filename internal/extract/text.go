package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackzampolin/veridoc/internal/classify"
	"github.com/jackzampolin/veridoc/internal/docmodel"
	"github.com/jackzampolin/veridoc/internal/providers"
)

const (
	textTemperature = 0.2
	textMaxTokens   = 2048
)

// TextStrategy extracts structured data from recognized text via a
// generative text provider, using a classification-aware prompt.
type TextStrategy struct {
	client providers.LLMClient
	model  string
	logger *slog.Logger
}

var _ Strategy = (*TextStrategy)(nil)

// NewTextStrategy returns a text-grounded extraction strategy. An empty
// model uses the client's default.
func NewTextStrategy(client providers.LLMClient, model string, logger *slog.Logger) *TextStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStrategy{client: client, model: model, logger: logger}
}

func (s *TextStrategy) Name() string { return MethodText }

// Extract classifies the text, prompts the provider for schema-conforming
// JSON, and normalizes the reply.
func (s *TextStrategy) Extract(ctx context.Context, in Input) (*docmodel.ExtractedDocument, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyInput
	}

	cls := classify.Classify(in.Text)
	strat := classify.StrategyFor(cls.Type)
	s.logger.Debug("classified document",
		"type", cls.Type,
		"confidence", cls.Confidence,
		"priority", strat.Priority)

	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: textSystemPrompt},
			{Role: "user", Content: buildTextUserPrompt(in.Text, cls, strat)},
		},
		Model:       s.model,
		Temperature: textTemperature,
		MaxTokens:   textMaxTokens,
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: docmodel.ResponseSchemaJSON(),
		},
		RequestID: in.RequestID,
	}

	result, err := s.client.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("text extraction: %w", err)
	}

	raw := result.ParsedJSON
	if raw == nil {
		raw, err = providers.ParseStructuredJSON(result.Content)
		if err != nil {
			return nil, fmt.Errorf("text extraction reply: %w", err)
		}
	}
	if err := docmodel.ValidateResponse(raw); err != nil {
		return nil, fmt.Errorf("text extraction reply: %w", err)
	}

	doc, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("text extraction: %w", err)
	}
	doc.ExtractionMethod = docmodel.NewField(fmt.Sprintf("ocr+llm (%s)", result.ModelUsed), 1.0)
	return doc, nil
}
