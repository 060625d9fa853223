package trace

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "multibroker-console"

var (
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	enabled        bool
)

// Config holds tracing configuration.
type Config struct {
	Enabled     bool
	PrettyPrint bool
	Version     string
}

// Init configures tracing from environment variables. Tracing is on unless
// LOG_TRACING_ENABLED=false.
func Init() error {
	return InitWithConfig(Config{
		Enabled:     getEnv("LOG_TRACING_ENABLED", "true") == "true",
		PrettyPrint: getEnv("LOG_TRACING_PRETTY", "true") == "true",
		Version:     getEnv("CONSOLE_VERSION", "1.0.0"),
	})
}

// InitWithConfig installs a stdout span exporter behind a batching provider.
// With Enabled false every span helper degrades to a no-op.
func InitWithConfig(cfg Config) error {
	enabled = cfg.Enabled
	if !enabled {
		return nil
	}

	var exporterOpts []stdouttrace.Option
	if cfg.PrettyPrint {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		return err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer(serviceName)
	return nil
}

// Shutdown flushes buffered spans. Safe to call when tracing never started.
func Shutdown(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}
	return tracerProvider.Shutdown(ctx)
}

// StartSpan opens a span, or returns the current one untouched when tracing
// is off.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName, opts...)
}

func Enabled() bool {
	return enabled
}

// GetTraceFields extracts the active trace and span ids for log correlation.
func GetTraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !enabled {
		return "", "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
