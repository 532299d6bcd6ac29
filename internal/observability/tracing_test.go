package observability

import (
	"testing"

	"github.com/easel-ai/easel/internal/config"
	"github.com/easel-ai/easel/internal/log"
)

func TestSetupTracingDisabledWithoutEndpoint(t *testing.T) {
	shutdown := SetupTracing(t.Context(), config.OTLPConfig{}, log.NewNop())
	if shutdown == nil {
		t.Fatal("shutdown func is nil")
	}
	shutdown()
}
