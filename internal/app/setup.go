package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/easel-ai/easel/db"
	"github.com/easel-ai/easel/internal/agent"
	"github.com/easel-ai/easel/internal/api"
	"github.com/easel-ai/easel/internal/artifact"
	"github.com/easel-ai/easel/internal/auth"
	"github.com/easel-ai/easel/internal/chat"
	"github.com/easel-ai/easel/internal/config"
	"github.com/easel-ai/easel/internal/extract"
	"github.com/easel-ai/easel/internal/log"
	"github.com/easel-ai/easel/internal/model"
	"github.com/easel-ai/easel/internal/observability"
	"github.com/easel-ai/easel/internal/security"
	"github.com/easel-ai/easel/internal/tools"
)

// Setup creates and initializes the application. On error everything
// already initialized is released before returning.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	// Tracing first: genkit.Init reads the tracer provider state.
	a.otelCleanup = observability.SetupTracing(ctx, cfg.OTLP, logger)

	pool, err := provideDBPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	models, err := model.NewGenerator(model.GeneratorConfig{
		Genkit:       g,
		DefaultModel: cfg.FullModelName(cfg.ModelName),
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}
	a.Models = models

	a.Chats = chat.NewStore(pool, logger)
	a.Documents = artifact.NewStore(pool, logger)
	a.Scraped = extract.NewStore(pool, logger)

	extractor, err := provideExtractor(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Extractor = extractor

	handlers := artifact.NewRegistry(map[artifact.Kind]artifact.Handler{
		artifact.KindText:  artifact.NewTextHandler(models, cfg.FullModelName(cfg.ModelName)),
		artifact.KindSheet: artifact.NewSheetHandler(models, cfg.FullModelName(cfg.SheetModel)),
	})

	registry, err := tools.NewDefaultRegistry(tools.KitConfig{
		Extractor: extractor,
		Handlers:  handlers,
		Documents: a.Documents,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}
	if err := registry.Register(g); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	a.Tools = registry

	orch, err := agent.New(agent.Config{
		Models:         models,
		Chats:          a.Chats,
		Tools:          registry,
		Logger:         logger,
		DefaultModel:   cfg.FullModelName(cfg.ModelName),
		ReasoningModel: cfg.FullModelName(cfg.ReasoningModel),
		MaxSteps:       cfg.MaxSteps,
	})
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}
	a.Orchestrator = orch

	server, err := api.NewServer(api.ServerConfig{
		Logger:    logger,
		Auth:      auth.NewStatic(cfg.AuthTokens),
		Runner:    orch,
		Chats:     a.Chats,
		Documents: a.Documents,
		Scraped:   a.Scraped,
		DB:        pool,
	})
	if err != nil {
		return nil, fmt.Errorf("creating API server: %w", err)
	}
	a.Server = server

	return a, nil
}

// provideDBPool runs migrations and creates the connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config, logger log.Logger) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// provideGenkit initializes Genkit with the configured provider plugin.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, error) {
	promptDir := cfg.PromptDir
	if promptDir == "" {
		promptDir = "prompts"
	}

	var g *genkit.Genkit
	switch cfg.Provider {
	case config.ProviderOpenAI:
		g = genkit.Init(ctx,
			genkit.WithPlugins(&openai.OpenAI{}),
			genkit.WithPromptDir(promptDir),
		)
		if g == nil {
			return nil, errors.New("initializing genkit with openai provider")
		}
		logger.Info("initialized Genkit with openai provider", "model", cfg.ModelName)

	default: // gemini
		g = genkit.Init(ctx,
			genkit.WithPlugins(&googlegenai.GoogleAI{}),
			genkit.WithPromptDir(promptDir),
		)
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
		logger.Info("initialized Genkit with gemini provider", "model", cfg.ModelName)
	}

	return g, nil
}

// provideExtractor selects the extraction backend. Remote talks to a
// hosted extraction API; local crawls with an SSRF-guarded client.
func provideExtractor(cfg *config.Config, logger log.Logger) (extract.Extractor, error) {
	ec := cfg.Extractor
	switch ec.Backend {
	case config.ExtractorRemote:
		timeout := time.Duration(ec.TimeoutMs) * time.Millisecond
		remote, err := extract.NewRemote(ec.BaseURL, ec.APIKey, timeout, logger)
		if err != nil {
			return nil, fmt.Errorf("creating remote extractor: %w", err)
		}
		return remote, nil

	case config.ExtractorLocal:
		validator := security.NewHTTP(logger)
		local, err := extract.NewLocal(validator, extract.LocalConfig{
			Parallelism: ec.Parallelism,
			Delay:       time.Duration(ec.DelayMs) * time.Millisecond,
			MaxPages:    ec.MaxPages,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("creating local extractor: %w", err)
		}
		return local, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidExtractor, ec.Backend)
	}
}
