package app

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type appMetricsCollection struct {
	registrations metric.Int64Counter
}

var metrics appMetricsCollection

func init() {
	const name = "milestones/app"
	meter := otel.Meter(name)

	registrations, err := meter.Int64Counter(
		"app/registrations",
		metric.WithDescription("Candidate registrations by definition and outcome"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create registrations metric: %w", err))
	}

	metrics = appMetricsCollection{
		registrations: registrations,
	}
}
