// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// Options controls logger construction.
type Options struct {
	Level          string
	GraylogAddress string
	// Output defaults to stderr; stdout carries the MCP stdio transport.
	Output  io.Writer
	NoColor bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a console logger, teed to Graylog when an address is set.
// The returned Closer releases the Graylog connection.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    opts.NoColor,
	}

	var (
		w      io.Writer = console
		closer io.Closer = nopCloser{}
	)
	if opts.GraylogAddress != "" {
		gw, err := gelf.NewWriter(opts.GraylogAddress)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logging: graylog writer: %w", err)
		}
		w = zerolog.MultiLevelWriter(console, gw)
		closer = gw
	}

	log := zerolog.New(w).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Logger()
	return log, closer, nil
}
