package telemetry

import (
	"context"
	"fmt"

	"linkpage/config"

	logger "github.com/Bparsons0904/goLogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const ServiceName = "linkpage"

type ShutdownFunc func(context.Context) error

// Init installs the global propagator and, when an OTLP endpoint is
// configured, a batching trace provider. The returned func flushes it.
func Init(ctx context.Context, cfg config.Config) (ShutdownFunc, error) {
	log := logger.New("telemetry").Function("Init")

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.OtelExporterEndpoint == "" {
		log.Info("OpenTelemetry disabled: OTEL_EXPORTER_OTLP_ENDPOINT is empty")
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(cfg.GeneralVersion),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OtelExporterEndpoint))
	if err != nil {
		return nil, log.Err("failed to create trace exporter", err, "endpoint", cfg.OtelExporterEndpoint)
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	log.Info("OpenTelemetry tracing enabled", "endpoint", cfg.OtelExporterEndpoint)
	return provider.Shutdown, nil
}
