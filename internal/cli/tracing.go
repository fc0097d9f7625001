package cli

import (
	"context"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"learnsnap/internal/config"
	"learnsnap/internal/logger"
)

// initTracing installs an SDK tracer provider exporting gateway spans to w
// when tracing is set to "stdout". The returned func flushes and stops it.
func initTracing(ctx context.Context, cfg config.Config, w io.Writer, log *logger.Logger) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !strings.EqualFold(strings.TrimSpace(cfg.Tracing), "stdout") {
		return noop
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Warn("otel exporter init failed (continuing)", "error", err)
		return noop
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", "learnsnap"),
			attribute.String("service.component", "cli"),
		),
	)
	if err != nil {
		log.Warn("otel resource init failed (continuing)", "error", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Debug("otel tracing initialized", "exporter", "stdout")
	return tp.Shutdown
}
