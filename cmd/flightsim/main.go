package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eytandecker/flightsim-dynamics/internal/collision"
	"github.com/eytandecker/flightsim-dynamics/internal/config"
	"github.com/eytandecker/flightsim-dynamics/internal/flight"
	"github.com/eytandecker/flightsim-dynamics/internal/geodesy"
	"github.com/eytandecker/flightsim-dynamics/internal/input"
	"github.com/eytandecker/flightsim-dynamics/internal/logging"
	internalmcp "github.com/eytandecker/flightsim-dynamics/internal/mcp"
	"github.com/eytandecker/flightsim-dynamics/internal/recorder"
	"github.com/eytandecker/flightsim-dynamics/internal/sim"
	"github.com/eytandecker/flightsim-dynamics/internal/state"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "flightsim exited: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, logCloser, err := logging.New(logging.Options{
		Level:          cfg.Log.Level,
		GraylogAddress: cfg.Log.GraylogAddress,
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	obstacles := collision.Scatter(rand.New(rand.NewSource(cfg.Obstacles.Seed)), collision.ScatterConfig{
		Count:       cfg.Obstacles.Count,
		FieldSize:   cfg.Obstacles.FieldSize,
		MaxSize:     cfg.Obstacles.MaxSize,
		ClearRadius: cfg.Obstacles.ClearRadius,
	})
	core, err := flight.New(cfg.Vehicle, collision.NewWorld(obstacles...))
	if err != nil {
		return err
	}
	log.Info().Int("obstacles", len(obstacles)).Msg("Scene ready")

	projector, err := geodesy.NewProjector(geodesy.Origin{
		Longitude: cfg.Geodesy.OriginLongitude,
		Latitude:  cfg.Geodesy.OriginLatitude,
		Elevation: cfg.Geodesy.OriginElevation,
	})
	if err != nil {
		return err
	}
	origin := projector.Origin()
	log.Info().
		Float64("longitude", origin.Longitude).
		Float64("latitude", origin.Latitude).
		Float64("elevation", origin.Elevation).
		Msg("Local frame anchored")

	session := time.Now().UTC().Format("20060102T150405Z")
	track := recorder.NewTrack(cfg.Recorder.TrackCapacity)
	sink, err := openSinks(cfg, session, track, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close recorder")
		}
	}()

	mgr := state.NewManager(cfg.Sim.StaleThreshold)
	held := input.NewHeldKeys()
	runner, err := sim.NewRunner(core, held, mgr, sim.Config{
		FrameRate:       cfg.Sim.FrameRate,
		MaxRecordErrors: cfg.Sim.MaxRecordErrors,
	},
		sim.WithRecorder(sink),
		sim.WithProjector(projector),
		sim.WithLogger(log.With().Str("component", "sim").Logger()),
	)
	if err != nil {
		return err
	}

	go func() {
		err := runner.Start(ctx)
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error().Err(err).Msg("Simulation loop stopped")
		mgr.Stop(err)
	}()

	mcpServer := internalmcp.NewServer(mgr, held, track)
	if err := mcpServer.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openSinks builds the recorder chain: the ground track always, plus the
// configured SQL and InfluxDB sinks behind a sampler.
func openSinks(cfg config.Config, session string, track *recorder.Track, log zerolog.Logger) (recorder.Sink, error) {
	var sampled recorder.Fanout

	switch cfg.Recorder.Driver {
	case "", "none":
	case recorder.DriverSQLite, recorder.DriverPostgres:
		s, err := recorder.OpenSQL(cfg.Recorder.Driver, cfg.Recorder.DSN, session,
			log.With().Str("component", "sql").Logger())
		if err != nil {
			return nil, err
		}
		sampled = append(sampled, s)
	default:
		return nil, fmt.Errorf("%w: %q", recorder.ErrUnknownDriver, cfg.Recorder.Driver)
	}

	if cfg.Influx.Enabled {
		sampled = append(sampled, recorder.NewInfluxSink(recorder.InfluxConfig{
			URL:    cfg.Influx.URL,
			Token:  cfg.Influx.Token,
			Org:    cfg.Influx.Org,
			Bucket: cfg.Influx.Bucket,
		}, session, log.With().Str("component", "influx").Logger()))
	}

	interval := cfg.Recorder.Interval.Seconds()
	return recorder.Fanout{
		recorder.NewSampler(track, interval),
		recorder.NewSampler(sampled, interval),
	}, nil
}
