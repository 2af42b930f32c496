package sim

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/eytandecker/flightsim-dynamics/internal/sim"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	frames       metric.Int64Counter
	collisions   metric.Int64Counter
	resets       metric.Int64Counter
	recordErrors metric.Int64Counter
	frameDelta   metric.Float64Histogram
	speed        metric.Float64ObservableGauge
}

// newMetrics creates the runner instruments on the global meter provider
// (no-op unless one is configured). speed is polled by the gauge callback.
func newMetrics(speed func() (float64, bool)) (*metrics, error) {
	m := meter()
	out := &metrics{}

	var err error
	out.frames, err = m.Int64Counter(
		"sim.frames",
		metric.WithDescription("Total frames simulated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}

	out.collisions, err = m.Int64Counter(
		"sim.collisions",
		metric.WithDescription("Frames that ended in a collision stop"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating collisions counter: %w", err)
	}

	out.resets, err = m.Int64Counter(
		"sim.resets",
		metric.WithDescription("Vehicle resets"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resets counter: %w", err)
	}

	out.recordErrors, err = m.Int64Counter(
		"sim.recorder.errors",
		metric.WithDescription("Snapshots the recorder failed to store"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating recorder errors counter: %w", err)
	}

	out.frameDelta, err = m.Float64Histogram(
		"sim.frame.delta",
		metric.WithDescription("Clamped frame step"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame delta histogram: %w", err)
	}

	out.speed, err = m.Float64ObservableGauge(
		"vehicle.speed",
		metric.WithDescription("Vehicle speed"),
		metric.WithUnit("m/s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating speed gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			if v, ok := speed(); ok {
				o.ObserveFloat64(out.speed, v)
			}
			return nil
		},
		out.speed,
	)
	if err != nil {
		return nil, fmt.Errorf("registering speed callback: %w", err)
	}

	return out, nil
}

func (m *metrics) frame(ctx context.Context, dt float64, grounded bool) {
	attrs := metric.WithAttributes(attribute.Bool("grounded", grounded))
	m.frames.Add(ctx, 1, attrs)
	m.frameDelta.Record(ctx, dt, attrs)
}
