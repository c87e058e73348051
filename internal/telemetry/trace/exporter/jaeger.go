package exporter

import (
	"go.opentelemetry.io/otel/exporters/jaeger"
)

// NewJaeger exports spans to a Jaeger collector HTTP endpoint.
func NewJaeger(endpoint string) (*jaeger.Exporter, error) {
	return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
}
