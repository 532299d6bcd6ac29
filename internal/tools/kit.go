package tools

import (
	"fmt"

	"github.com/easel-ai/easel/internal/artifact"
	"github.com/easel-ai/easel/internal/extract"
	"github.com/easel-ai/easel/internal/log"
)

// KitConfig holds the dependencies for the full toolset.
type KitConfig struct {
	Extractor extract.Extractor
	Handlers  *artifact.Registry
	Documents DocumentStore

	// WeatherBaseURL overrides the open-meteo endpoint. Empty uses the
	// public API.
	WeatherBaseURL string

	Logger log.Logger
}

// NewDefaultRegistry builds the registry holding every tool the agent
// exposes: scrapeUrl, mapUrl, getWeather, createDocument,
// updateDocument.
func NewDefaultRegistry(cfg KitConfig) (*Registry, error) {
	extraction, err := NewExtractionTools(cfg.Extractor, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("extraction tools: %w", err)
	}
	documents, err := NewDocumentTools(cfg.Handlers, cfg.Documents, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("document tools: %w", err)
	}
	weather := NewWeatherTools(cfg.WeatherBaseURL, cfg.Logger)

	var all []*Tool
	for _, set := range []interface{ Tools() ([]*Tool, error) }{extraction, documents, weather} {
		ts, err := set.Tools()
		if err != nil {
			return nil, err
		}
		all = append(all, ts...)
	}

	return NewRegistry(all...)
}
