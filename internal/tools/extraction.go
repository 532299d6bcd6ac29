package tools

import (
	"context"
	"fmt"

	"github.com/easel-ai/easel/internal/extract"
	"github.com/easel-ai/easel/internal/log"
	"github.com/easel-ai/easel/internal/stream"
)

// ScrapeURLInput defines input for the scrapeUrl tool.
type ScrapeURLInput struct {
	URL      string `json:"url" jsonschema_description:"The URL to scrape content from"`
	DataType string `json:"dataType,omitempty" jsonschema_description:"Expected record type: team-member, deal, or raw"`
}

// ScrapeURLOutput is the result of a scrapeUrl call.
type ScrapeURLOutput struct {
	URL      string           `json:"url"`
	DataType string           `json:"dataType"`
	Items    []map[string]any `json:"items"`
}

// MapURLInput defines input for the mapUrl tool.
type MapURLInput struct {
	URL string `json:"url" jsonschema_description:"The website root whose nested URLs should be discovered"`
}

// MapURLOutput is the result of a mapUrl call.
type MapURLOutput struct {
	URL         string   `json:"url"`
	ScrapedURLs []string `json:"scrapedUrls"`
}

// ExtractionTools exposes the external extraction service to the
// model: one tool for structured scraping, one for site mapping.
type ExtractionTools struct {
	extractor extract.Extractor
	logger    log.Logger
}

// NewExtractionTools creates the extraction toolset.
func NewExtractionTools(extractor extract.Extractor, logger log.Logger) (*ExtractionTools, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &ExtractionTools{extractor: extractor, logger: logger}, nil
}

// Tools returns the extraction tools.
func (et *ExtractionTools) Tools() ([]*Tool, error) {
	scrape, err := NewTool(
		"scrapeUrl",
		"Scrape all content from the provided URL. If the content is valuable then "+
			"extract it and return it in a structured way. Use this whenever content "+
			"from a webpage is needed.",
		et.ScrapeURL,
	)
	if err != nil {
		return nil, err
	}

	mapTool, err := NewTool(
		"mapUrl",
		"Given a website URL, discover all the URLs nested inside that website. "+
			"Use this whenever the user wants every URL inside a site.",
		et.MapURL,
	)
	if err != nil {
		return nil, err
	}

	return []*Tool{scrape, mapTool}, nil
}

// ScrapeURL calls the extraction service for one URL. A structured
// service failure becomes an ExtractionFailed error carrying the
// service's message, never a partial success.
func (et *ExtractionTools) ScrapeURL(ctx context.Context, input ScrapeURLInput, _ stream.Sink) (ScrapeURLOutput, error) {
	if input.URL == "" {
		return ScrapeURLOutput{}, &ToolError{ErrorType: ErrTypeInvalidArguments, Message: "url is required"}
	}
	if input.DataType != "" && !extract.ValidDataType(input.DataType) {
		return ScrapeURLOutput{}, &ToolError{
			ErrorType: ErrTypeInvalidArguments,
			Message:   fmt.Sprintf("unknown data type %q", input.DataType),
		}
	}

	et.logger.Info("scraping url", "url", input.URL, "data_type", input.DataType)

	result, err := et.extractor.Extract(ctx,
		[]string{input.URL},
		"Extract all valuable and useful content from the page",
		input.DataType)
	if err != nil {
		return ScrapeURLOutput{}, fmt.Errorf("scrape failed: %w", err)
	}
	if !result.Success {
		return ScrapeURLOutput{}, fmt.Errorf("%w: %s", extract.ErrFailed, result.Error)
	}

	dataType := result.DataType
	if dataType == "" {
		dataType = input.DataType
	}

	return ScrapeURLOutput{
		URL:      input.URL,
		DataType: dataType,
		Items:    result.Items,
	}, nil
}

// MapURL discovers the URLs nested under a website root, with the
// same structured-failure translation as ScrapeURL.
func (et *ExtractionTools) MapURL(ctx context.Context, input MapURLInput, _ stream.Sink) (MapURLOutput, error) {
	if input.URL == "" {
		return MapURLOutput{}, &ToolError{ErrorType: ErrTypeInvalidArguments, Message: "url is required"}
	}

	et.logger.Info("mapping url", "url", input.URL)

	result, err := et.extractor.MapURL(ctx, input.URL)
	if err != nil {
		return MapURLOutput{}, fmt.Errorf("map failed: %w", err)
	}
	if !result.Success {
		return MapURLOutput{}, fmt.Errorf("%w: %s", extract.ErrFailed, result.Error)
	}

	return MapURLOutput{
		URL:         input.URL,
		ScrapedURLs: result.Links,
	}, nil
}
