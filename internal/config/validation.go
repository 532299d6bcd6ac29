package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// Provider and API key validation. The Genkit plugins read the keys
	// directly from the environment, so presence is checked here.
	switch c.Provider {
	case ProviderGemini, ProviderGoogleAI:
		if os.Getenv("GEMINI_API_KEY") == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
				"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
				ErrMissingAPIKey)
		}
	case ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY environment variable is required", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("%w: %q is not supported (valid: gemini, googleai, openai)",
			ErrInvalidProvider, c.Provider)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}

	// Temperature range: 0.0 (deterministic) to 2.0 (maximum creativity)
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}

	if c.MaxTokens < 1 || c.MaxTokens > 2097152 {
		return fmt.Errorf("%w: must be between 1 and 2,097,152, got %d", ErrInvalidMaxTokens, c.MaxTokens)
	}

	// The step cap bounds the model-call loop within one request. A cap
	// under 2 cannot complete a single tool round trip.
	if c.MaxSteps < 2 || c.MaxSteps > 32 {
		return fmt.Errorf("%w: must be between 2 and 32, got %d", ErrInvalidMaxSteps, c.MaxSteps)
	}

	// PostgreSQL configuration validation
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}

	if c.PostgresPassword == "" {
		return fmt.Errorf("%w: postgres_password must be set", ErrInvalidPostgresPassword)
	}

	// Warn on the default dev password but don't block; local dev uses it.
	if c.PostgresPassword == "easel_dev_password" {
		slog.Warn("Using default development password for PostgreSQL",
			"warning", "Change postgres_password for production deployments")
	}

	if len(c.PostgresPassword) < 8 {
		return fmt.Errorf("%w: postgres_password must be at least 8 characters (got %d)",
			ErrInvalidPostgresPassword, len(c.PostgresPassword))
	}

	// Modern SSL modes only; allow/prefer are deprecated (MITM vulnerable).
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidPostgresSSLMode, c.PostgresSSLMode, validSSLModes)
	}

	switch c.Extractor.Backend {
	case ExtractorLocal:
		// No credentials needed.
	case ExtractorRemote:
		if c.Extractor.APIKey == "" {
			return fmt.Errorf("%w: extractor backend %q requires FIRECRAWL_API_KEY",
				ErrMissingAPIKey, ExtractorRemote)
		}
		if c.Extractor.BaseURL == "" {
			return fmt.Errorf("%w: extractor base_url cannot be empty", ErrInvalidExtractor)
		}
	default:
		return fmt.Errorf("%w: %q is not valid (valid: local, remote)",
			ErrInvalidExtractor, c.Extractor.Backend)
	}

	return nil
}

// NormalizeMaxHistoryMessages clamps the per-chat history load limit.
func NormalizeMaxHistoryMessages(limit int32) int32 {
	const (
		minLimit int32 = 10
		maxLimit int32 = 10000
	)
	if limit <= 0 {
		return DefaultMaxHistoryMessages
	}
	if limit < minLimit {
		return minLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
