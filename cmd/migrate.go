package cmd

import (
	"fmt"

	"github.com/easel-ai/easel/db"
	"github.com/easel-ai/easel/internal/config"
	"github.com/easel-ai/easel/internal/log"
)

// runMigrate applies pending database migrations and exits. The serve
// command migrates on startup too, but a standalone command is useful for
// deploy pipelines that migrate before rolling the server.
func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{JSON: true})

	if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("migrations applied")
	return nil
}
