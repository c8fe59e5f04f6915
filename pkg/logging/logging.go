package logging

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// FileLogger builds a logrus logger writing to path. An empty path logs text
// to stderr; a file gets JSON lines. The returned file is nil for stderr and
// must be closed by the caller otherwise.
func FileLogger(level logrus.Level, path string) (*os.File, *logrus.Logger, error) {
	logger := logrus.New()
	logger.SetLevel(level)

	if path == "" {
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return nil, logger, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(f)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	return f, logger, nil
}

// SetupTracing installs a global OTLP/HTTP tracer provider and returns its
// shutdown func. Failures, including export errors reported by the SDK, go to
// logger; tracing stays a no-op when the exporter cannot be created.
func SetupTracing(ctx context.Context, logger logrus.FieldLogger, serviceName, endpoint string) func() {
	logger = logger.WithField("component", "tracing")
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.WithError(err).Warn("opentelemetry error")
	}))

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.WithError(err).Error("tracing disabled: create exporter")
		return func() {}
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		logger.WithError(err).Warn("merge tracing resource")
		res = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("tracing shutdown")
		}
	}
}
