package testutil

import (
	"log/slog"

	"github.com/easel-ai/easel/internal/log"
)

// DiscardLogger returns a logger that drops all output, keeping test
// logs quiet. log.Logger aliases *slog.Logger, so the result works
// anywhere either type is accepted.
func DiscardLogger() log.Logger {
	return slog.New(slog.DiscardHandler)
}
