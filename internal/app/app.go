// Package app wires the application together: configuration, database,
// Genkit, stores, tools, the orchestrator, and the HTTP server.
package app

import (
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/easel-ai/easel/internal/agent"
	"github.com/easel-ai/easel/internal/api"
	"github.com/easel-ai/easel/internal/artifact"
	"github.com/easel-ai/easel/internal/chat"
	"github.com/easel-ai/easel/internal/config"
	"github.com/easel-ai/easel/internal/extract"
	"github.com/easel-ai/easel/internal/log"
	"github.com/easel-ai/easel/internal/model"
	"github.com/easel-ai/easel/internal/tools"
)

// App is the application container. Built once at startup by Setup;
// Close releases everything in reverse order.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit *genkit.Genkit
	DBPool *pgxpool.Pool

	Chats     *chat.Store
	Documents *artifact.Store
	Scraped   *extract.Store
	Extractor extract.Extractor

	Models       model.Client
	Tools        *tools.Registry
	Orchestrator *agent.Orchestrator
	Server       *api.Server

	otelCleanup func()
}

// Close shuts down all resources.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Debug("database pool closed")
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return nil
}
