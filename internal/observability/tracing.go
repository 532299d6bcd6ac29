// Package observability wires trace export into Genkit's tracer
// provider. Spans cover model steps, tool execution, and the flows
// Genkit creates internally.
package observability

import (
	"context"
	"os"
	"time"

	"github.com/firebase/genkit/go/core/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/easel-ai/easel/internal/config"
	"github.com/easel-ai/easel/internal/log"
)

// SetupTracing registers an OTLP/HTTP span exporter with Genkit's
// TracerProvider. Must run before genkit.Init so the provider is ready
// when the first flow starts. Returns a shutdown function; with no
// endpoint configured tracing stays off and the shutdown is a no-op.
func SetupTracing(ctx context.Context, cfg config.OTLPConfig, logger log.Logger) func() {
	if cfg.Endpoint == "" {
		logger.Debug("no OTLP endpoint configured, tracing disabled")
		return func() {}
	}

	// Genkit's TracerProvider reads service identity from the OTEL env
	// vars. Setenv is not concurrent-safe, but setup runs exactly once
	// before any goroutines are spawned.
	if cfg.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		logger.Warn("creating OTLP exporter, tracing disabled", "error", err)
		return func() {}
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Debug("tracing enabled",
		"endpoint", cfg.Endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	shutdown := tracing.TracerProvider().Shutdown

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}
