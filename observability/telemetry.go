package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/odit-bit/openai-cli/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

type ShutdownFn func(context.Context) error

// Telemetry is what API calls are instrumented with.
type Telemetry struct {
	Tracer   trace.Tracer
	Meter    metric.Meter
	Shutdown ShutdownFn
}

func noopTelemetry(serviceName string) *Telemetry {
	return &Telemetry{
		Tracer:   tracenoop.NewTracerProvider().Tracer(serviceName),
		Meter:    metricnoop.NewMeterProvider().Meter(serviceName),
		Shutdown: func(context.Context) error { return nil },
	}
}

// Init configures OpenTelemetry for one invocation. When disabled the tracer
// and meter are no-ops. The stdout exporter pretty prints to w; the http
// exporter ships otlp to the configured endpoints. Shutdown flushes pending
// spans and metrics and must be called before exit.
func Init(ctx context.Context, serviceName string, cfg config.TraceConfig, w io.Writer) (*Telemetry, error) {
	if !cfg.Enable {
		return noopTelemetry(serviceName), nil
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otel resource: %w", err)
	}

	// --- TRACER PROVIDER ---
	var traceExporter sdktrace.SpanExporter
	switch cfg.Exporter {
	case config.ExporterHTTP:
		otlpOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.TraceEndpoint)}
		if !cfg.Secure {
			otlpOpts = append(otlpOpts, otlptracehttp.WithInsecure())
		}
		traceExporter, err = otlptracehttp.New(ctx, otlpOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp http trace exporter: %w", err)
		}
	default:
		traceExporter, err = stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	// --- METER PROVIDER ---
	var metricExporter sdkmetric.Exporter
	switch cfg.Exporter {
	case config.ExporterHTTP:
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.MetricsEndpoint)}
		if !cfg.Secure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		metricExporter, err = otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			tracerProvider.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create otlp http metric exporter: %w", err)
		}
	default:
		metricExporter, err = stdoutmetric.New(
			stdoutmetric.WithWriter(w),
			stdoutmetric.WithPrettyPrint(),
		)
		if err != nil {
			tracerProvider.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}
	}

	// one-shot process, metrics are exported on shutdown
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	otel.SetTextMapPropagator(propagation.TraceContext{})
	slog.Debug("telemetry initialized", "exporter", cfg.Exporter)

	return &Telemetry{
		Tracer: tracerProvider.Tracer(serviceName),
		Meter:  meterProvider.Meter(serviceName),
		Shutdown: func(ctx context.Context) error {
			var shutdownErr error
			if err := tracerProvider.Shutdown(ctx); err != nil {
				shutdownErr = errors.Join(shutdownErr, err)
			}
			if err := meterProvider.Shutdown(ctx); err != nil {
				shutdownErr = errors.Join(shutdownErr, err)
			}
			return shutdownErr
		},
	}, nil
}
