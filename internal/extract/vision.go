package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/veridoc/internal/docmodel"
	"github.com/jackzampolin/veridoc/internal/providers"
)

const (
	visionTemperature = 0.1
	visionMaxTokens   = 2048
)

// VisionStrategy extracts structured data directly from page imagery via a
// generative vision provider, bypassing recognized text entirely.
type VisionStrategy struct {
	client providers.LLMClient
	model  string
	logger *slog.Logger
}

var _ Strategy = (*VisionStrategy)(nil)

// NewVisionStrategy returns a vision-grounded extraction strategy.
func NewVisionStrategy(client providers.LLMClient, model string, logger *slog.Logger) *VisionStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionStrategy{client: client, model: model, logger: logger}
}

func (s *VisionStrategy) Name() string { return MethodVision }

// Extract sends the page image to the provider and normalizes the reply.
func (s *VisionStrategy) Extract(ctx context.Context, in Input) (*docmodel.ExtractedDocument, error) {
	if len(in.Image) == 0 {
		return nil, ErrEmptyInput
	}

	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: visionSystemPrompt},
			{Role: "user", Content: visionUserPrompt, Images: [][]byte{in.Image}},
		},
		Model:       s.model,
		Temperature: visionTemperature,
		MaxTokens:   visionMaxTokens,
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: docmodel.ResponseSchemaJSON(),
		},
		RequestID: in.RequestID,
	}

	result, err := s.client.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision extraction: %w", err)
	}
	s.logger.Debug("vision extraction complete",
		"provider", result.Provider,
		"model", result.ModelUsed,
		"tokens", result.TotalTokens)

	raw := result.ParsedJSON
	if raw == nil {
		raw, err = providers.ParseStructuredJSON(result.Content)
		if err != nil {
			return nil, fmt.Errorf("vision extraction reply: %w", err)
		}
	}
	if err := docmodel.ValidateResponse(raw); err != nil {
		return nil, fmt.Errorf("vision extraction reply: %w", err)
	}

	doc, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("vision extraction: %w", err)
	}
	doc.ExtractionMethod = docmodel.NewField(fmt.Sprintf("vision llm (%s)", result.ModelUsed), 1.0)
	return doc, nil
}
