package main

import (
	"fmt"
	"log/slog"

	"github.com/jackzampolin/veridoc/internal/config"
	"github.com/jackzampolin/veridoc/internal/enrich"
	"github.com/jackzampolin/veridoc/internal/extract"
	"github.com/jackzampolin/veridoc/internal/ingest"
	"github.com/jackzampolin/veridoc/internal/pipeline"
	"github.com/jackzampolin/veridoc/internal/providers"
	"github.com/jackzampolin/veridoc/internal/recognize"
	"github.com/jackzampolin/veridoc/internal/segment"
)

// runtime bundles the components both serve and extract need.
type runtime struct {
	engine   *recognize.Engine
	pipe     *pipeline.Pipeline
	resolver *ingest.Resolver
}

// buildRuntime wires providers, strategies, and the pipeline from config.
func buildRuntime(cfg *config.Config, reg *providers.Registry, logger *slog.Logger) (*runtime, error) {
	ocr, err := reg.GetOCR(cfg.Defaults.OCRProvider)
	if err != nil {
		return nil, fmt.Errorf("default OCR provider: %w", err)
	}
	textClient, err := reg.GetLLM(cfg.Defaults.TextProvider)
	if err != nil {
		return nil, fmt.Errorf("default text provider: %w", err)
	}
	visionClient, err := reg.GetLLM(cfg.Defaults.VisionProvider)
	if err != nil {
		return nil, fmt.Errorf("default vision provider: %w", err)
	}
	textModel := cfg.LLMProviders[cfg.Defaults.TextProvider].Model
	visionModel := cfg.LLMProviders[cfg.Defaults.VisionProvider].Model

	segmenter := segment.New(segment.Options{
		SingleMaxChars:  cfg.Pipeline.SingleSegmentMaxChars,
		LongTextChars:   cfg.Pipeline.LongTextChars,
		MinSegmentChars: cfg.Pipeline.MinSegmentChars,
	})

	enrichers := []enrich.Enricher{
		enrich.KeyValueMiner{},
		enrich.AddressMiner{},
		enrich.NewSemanticMiner(textClient, textModel, logger),
	}

	pipe, err := pipeline.New(pipeline.Config{
		Text:      extract.NewTextStrategy(textClient, textModel, logger),
		Vision:    extract.NewVisionStrategy(visionClient, visionModel, logger),
		Segmenter: segmenter,
		Enrichers: enrichers,
		Options: pipeline.Options{
			TextThreshold:    cfg.Pipeline.TextConfidenceThreshold,
			VisionThreshold:  cfg.Pipeline.VisionConfidenceThreshold,
			TextMultiplier:   cfg.Pipeline.TextUngroundedMultiplier,
			VisionMultiplier: cfg.Pipeline.VisionUngroundedMultiplier,
			OverlapRatio:     cfg.Pipeline.WordOverlapRatio,
			MaxProviderCalls: cfg.Defaults.MaxWorkers * 2,
			// The response layer decides per request whether raw
			// candidates are exposed.
			KeepRawCandidates: true,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	return &runtime{
		engine:   recognize.NewEngine(ocr, logger),
		pipe:     pipe,
		resolver: ingest.NewResolver(logger),
	}, nil
}
