// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (./easel.yaml or /etc/easel/easel.yaml)
//  3. Default values
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidMaxSteps indicates the agent step cap is out of range.
	ErrInvalidMaxSteps = errors.New("invalid max steps")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresPassword indicates the PostgreSQL password is invalid.
	ErrInvalidPostgresPassword = errors.New("invalid PostgreSQL password")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrMissingAuthToken indicates no API auth token is configured.
	ErrMissingAuthToken = errors.New("missing auth token")

	// ErrInvalidExtractor indicates the extractor backend selection is invalid.
	ErrInvalidExtractor = errors.New("invalid extractor backend")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderGoogleAI = "googleai"
)

// Extractor backend identifiers used in ExtractorConfig.Backend.
const (
	ExtractorRemote = "remote"
	ExtractorLocal  = "local"
)

// ExtractorConfig controls the web extraction layer used by the
// scrape and map tools.
type ExtractorConfig struct {
	// Backend selects the implementation: "remote" (hosted extraction API)
	// or "local" (in-process crawler).
	Backend string `mapstructure:"backend" json:"backend"`

	// Remote backend settings.
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	APIKey  string `mapstructure:"api_key" json:"api_key"` // SENSITIVE: masked in MarshalJSON

	// Local backend settings.
	Parallelism int `mapstructure:"parallelism" json:"parallelism"`
	DelayMs     int `mapstructure:"delay_ms" json:"delay_ms"`
	TimeoutMs   int `mapstructure:"timeout_ms" json:"timeout_ms"`
	MaxPages    int `mapstructure:"max_pages" json:"max_pages"`
}

// MarshalJSON masks the API key.
func (e ExtractorConfig) MarshalJSON() ([]byte, error) {
	type alias ExtractorConfig
	a := alias(e)
	a.APIKey = maskSecret(a.APIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal extractor config: %w", err)
	}
	return data, nil
}

// OTLPConfig configures trace export to an OpenTelemetry collector.
type OTLPConfig struct {
	// Endpoint is the OTLP/HTTP collector address (host:port). Empty disables export.
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"`
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	Environment string `mapstructure:"environment" json:"environment"`
	Insecure    bool   `mapstructure:"insecure" json:"insecure"`
}

// Config stores application configuration.
// SECURITY: Sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (passwords, API keys, tokens), update MarshalJSON.
type Config struct {
	// HTTP server
	Addr string `mapstructure:"addr" json:"addr"`

	// AI provider and model configuration
	Provider       string  `mapstructure:"provider" json:"provider"`               // "gemini" (default), "openai"
	ModelName      string  `mapstructure:"model_name" json:"model_name"`           // primary chat model
	ReasoningModel string  `mapstructure:"reasoning_model" json:"reasoning_model"` // reasoning variant, defaults to ModelName
	SheetModel     string  `mapstructure:"sheet_model" json:"sheet_model"`         // structured-output model for sheets, defaults to ModelName
	Temperature    float32 `mapstructure:"temperature" json:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens" json:"max_tokens"`
	PromptDir      string  `mapstructure:"prompt_dir" json:"prompt_dir"`

	// Agent loop configuration
	MaxSteps           int   `mapstructure:"max_steps" json:"max_steps"`
	MaxHistoryMessages int32 `mapstructure:"max_history_messages" json:"max_history_messages"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// API auth tokens. Each token maps to a user id; see auth.Static.
	AuthTokens map[string]string `mapstructure:"auth_tokens" json:"auth_tokens"` // SENSITIVE: masked in MarshalJSON

	// Web extraction configuration
	Extractor ExtractorConfig `mapstructure:"extractor" json:"extractor"`

	// Observability configuration
	OTLP OTLPConfig `mapstructure:"otlp" json:"otlp"`
}

// DefaultMaxHistoryMessages is the default number of messages loaded per chat.
const DefaultMaxHistoryMessages int32 = 100

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("easel")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/easel")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"config_name", "easel.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL, when set, overrides the individual postgres_* values.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")

	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 4096)

	v.SetDefault("max_steps", 8)
	v.SetDefault("max_history_messages", DefaultMaxHistoryMessages)

	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "easel")
	v.SetDefault("postgres_password", "easel_dev_password")
	v.SetDefault("postgres_db_name", "easel")
	v.SetDefault("postgres_ssl_mode", "disable")

	// Extraction defaults: local crawler unless a remote API is configured.
	v.SetDefault("extractor.backend", ExtractorLocal)
	v.SetDefault("extractor.base_url", "https://api.firecrawl.dev")
	v.SetDefault("extractor.parallelism", 2)
	v.SetDefault("extractor.delay_ms", 1000)
	v.SetDefault("extractor.timeout_ms", 30000)
	v.SetDefault("extractor.max_pages", 100)

	v.SetDefault("otlp.service_name", "easel")
	v.SetDefault("otlp.environment", "dev")
	v.SetDefault("otlp.insecure", true)
}

// bindEnvVariables binds sensitive environment variables explicitly.
//
// NOTE: GEMINI_API_KEY and OPENAI_API_KEY are read directly by the Genkit
// plugins, not via Viper. Validation checks their presence based on the
// selected provider in cfg.Validate().
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("addr", "EASEL_ADDR")
	mustBind("provider", "EASEL_PROVIDER")
	mustBind("model_name", "EASEL_MODEL_NAME")
	mustBind("extractor.backend", "EASEL_EXTRACTOR")
	mustBind("extractor.api_key", "FIRECRAWL_API_KEY")
	mustBind("otlp.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks (U+2588) avoid accidental substring matches with
// real secret content.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Secrets of 8 chars
// or fewer are fully masked; longer ones keep the first and last 2 chars
// for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked:
//   - PostgresPassword
//   - AuthTokens (token values are the secret, user ids are not)
//   - Extractor.APIKey (via ExtractorConfig.MarshalJSON)
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	if len(a.AuthTokens) > 0 {
		masked := make(map[string]string, len(a.AuthTokens))
		for tok, user := range a.AuthTokens {
			masked[maskSecret(tok)] = user
		}
		a.AuthTokens = masked
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// FullModelName returns the provider-qualified model name for Genkit.
// Examples: "googleai/gemini-2.5-flash", "openai/gpt-4o".
// If name already contains a "/", it is returned as-is.
func (c *Config) FullModelName(name string) string {
	if name == "" {
		name = c.ModelName
	}
	if strings.Contains(name, "/") {
		return name
	}
	switch c.Provider {
	case ProviderOpenAI:
		return ProviderOpenAI + "/" + name
	default:
		return ProviderGoogleAI + "/" + name
	}
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
