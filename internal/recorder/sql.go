package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eytandecker/flightsim-dynamics/pkg/types"
)

// SQL drivers accepted by OpenSQL.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// FrameRecord is one recorded frame.
type FrameRecord struct {
	ID         uint   `gorm:"primarykey"`
	Session    string `gorm:"index;size:64"`
	Frame      uint64 `gorm:"index"`
	SimTime    float64
	RecordedAt time.Time

	PosX, PosY, PosZ float64
	Longitude        float64
	Latitude         float64
	Speed            float64
	Throttle         float64
	Heading          float64
	Pitch            float64
	Bank             float64

	Grounded bool
	Collided bool
	Boosted  bool
	HeldKeys datatypes.JSON
}

// TableName overrides the gorm default.
func (FrameRecord) TableName() string { return "flight_frames" }

// SQLSink writes frames into a SQL table through gorm.
type SQLSink struct {
	db      *gorm.DB
	sqlDB   *sql.DB
	session string
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// OpenSQL connects to driver/dsn and migrates the frame table.
func OpenSQL(driver, dsn, session string, log zerolog.Logger) (*SQLSink, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("recorder: open %s: %w", driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("recorder: access sql interface: %w", err)
	}
	if driver == DriverSQLite {
		// every sqlite connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&FrameRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("recorder: migrate: %w", err)
	}

	log.Info().Str("driver", driver).Str("session", session).Msg("SQL recorder ready")
	return &SQLSink{db: db, sqlDB: sqlDB, session: session, log: log}, nil
}

// Record implements Sink.
func (s *SQLSink) Record(ctx context.Context, snap types.VehicleSnapshot) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	rec, err := s.frameRecord(snap)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("recorder: insert frame %d: %w", snap.Frame, err)
	}
	return nil
}

// Frames returns up to limit frames of this session, oldest first.
func (s *SQLSink) Frames(ctx context.Context, limit int) ([]FrameRecord, error) {
	var out []FrameRecord
	err := s.db.WithContext(ctx).
		Where("session = ?", s.session).
		Order("frame ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("recorder: query frames: %w", err)
	}
	return out, nil
}

// Close implements Sink.
func (s *SQLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.sqlDB.Close()
}

func (s *SQLSink) frameRecord(snap types.VehicleSnapshot) (FrameRecord, error) {
	keys := snap.HeldKeys
	if keys == nil {
		keys = []string{}
	}
	held, err := json.Marshal(keys)
	if err != nil {
		return FrameRecord{}, fmt.Errorf("recorder: encode held keys: %w", err)
	}
	at := snap.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return FrameRecord{
		Session:    s.session,
		Frame:      snap.Frame,
		SimTime:    snap.SimTime,
		RecordedAt: at,
		PosX:       snap.Position.X,
		PosY:       snap.Position.Y,
		PosZ:       snap.Position.Z,
		Longitude:  snap.Longitude,
		Latitude:   snap.Latitude,
		Speed:      snap.Speed,
		Throttle:   snap.Throttle,
		Heading:    snap.Heading,
		Pitch:      snap.Pitch,
		Bank:       snap.Bank,
		Grounded:   snap.Grounded,
		Collided:   snap.Collided,
		Boosted:    snap.Boosted,
		HeldKeys:   datatypes.JSON(held),
	}, nil
}
