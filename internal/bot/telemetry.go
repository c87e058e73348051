package bot

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"audio_bot/config"
	ttrace "audio_bot/internal/telemetry/trace"
	traceExporter "audio_bot/internal/telemetry/trace/exporter"
)

// InitGlobalProvider installs the tracer provider for the configured exporter.
// With exporter "none" the global no-op provider stays in place.
func (b *Bot) InitGlobalProvider(name string, cfg *config.Config) {
	spanExporter, err := newSpanExporter(cfg.OTEL)
	if err != nil {
		log.Fatal().Err(err).Msgf("failed initializing the tracer exporter")
	}
	if spanExporter == nil {
		return
	}

	tracerProvider, tracerProviderCloseFn, err := ttrace.NewTraceProviderBuilder(name).
		SetVersion(cfg.App.Version).
		SetExporter(spanExporter).
		SetSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.OTEL.SampleRatio))).
		Build()
	if err != nil {
		log.Fatal().Err(err).Msgf("failed initializing the tracer provider")
	}
	b.traceProviderCloseFn = append(b.traceProviderCloseFn, tracerProviderCloseFn)

	// set global propagator to tracecontext (the default is no-op).
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tracerProvider)
}

func newSpanExporter(cfg config.OTEL) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "jaeger":
		return traceExporter.NewJaeger(cfg.Endpoint)
	case "otlp":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return traceExporter.NewOTLP(ctx, cfg.Endpoint)
	default:
		return nil, nil
	}
}
