package recorder

import (
	"context"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/eytandecker/flightsim-dynamics/pkg/types"
)

// Measurement is the InfluxDB measurement frames are written to.
const Measurement = "flight_frame"

// InfluxConfig holds InfluxDB connection settings.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// pointWriter is the subset of the InfluxDB non-blocking write API the sink uses.
type pointWriter interface {
	WritePoint(point *influxdb2_write.Point)
	Flush()
}

// InfluxSink writes frames as InfluxDB points through a batching write API.
type InfluxSink struct {
	writer  pointWriter
	session string
	closeFn func()

	mu     sync.Mutex
	closed bool
}

// NewInfluxSink connects to InfluxDB. Write errors are reported asynchronously to log.
func NewInfluxSink(cfg InfluxConfig, session string, log zerolog.Logger) *InfluxSink {
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)
	api := client.WriteAPI(cfg.Org, cfg.Bucket)
	go func(errorsCh <-chan error) {
		for err := range errorsCh {
			log.Error().Err(err).Str("bucket", cfg.Bucket).Msg("Error sending frame to InfluxDB")
		}
	}(api.Errors())

	log.Info().Str("url", cfg.URL).Str("bucket", cfg.Bucket).Msg("InfluxDB recorder ready")
	return newInfluxSink(api, session, client.Close)
}

func newInfluxSink(w pointWriter, session string, closeFn func()) *InfluxSink {
	return &InfluxSink{writer: w, session: session, closeFn: closeFn}
}

// Record implements Sink.
func (s *InfluxSink) Record(_ context.Context, snap types.VehicleSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.writer.WritePoint(FramePoint(s.session, snap))
	return nil
}

// Close flushes pending points and closes the client.
func (s *InfluxSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.writer.Flush()
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// FramePoint converts a snapshot into an InfluxDB point.
func FramePoint(session string, snap types.VehicleSnapshot) *influxdb2_write.Point {
	at := snap.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return influxdb2.NewPoint(
		Measurement,
		map[string]string{"session": session},
		map[string]interface{}{
			"frame":     int64(snap.Frame),
			"sim_time":  snap.SimTime,
			"x":         snap.Position.X,
			"y":         snap.Position.Y,
			"z":         snap.Position.Z,
			"longitude": snap.Longitude,
			"latitude":  snap.Latitude,
			"speed":     snap.Speed,
			"throttle":  snap.Throttle,
			"heading":   snap.Heading,
			"pitch":     snap.Pitch,
			"bank":      snap.Bank,
			"grounded":  snap.Grounded,
			"collided":  snap.Collided,
			"boosted":   snap.Boosted,
		},
		at,
	)
}
