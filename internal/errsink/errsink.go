// Package errsink collects errors that background work recovers from locally.
package errsink

import (
	"context"
	"fmt"
	"os"
	"sync"
	"wvw-dashboard/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Sink records an error for operation op. Implementations never fail.
type Sink interface {
	Record(ctx context.Context, op string, err error)
}

// FileSink appends one JSON line per error to a log file and mirrors it to
// the process logger.
type FileSink struct {
	mu     sync.Mutex
	file   *os.File
	out    zerolog.Logger
	logger zerolog.Logger
}

func NewFileSink(path string, logger zerolog.Logger) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}

	s := &FileSink{
		file:   f,
		logger: logger,
	}
	s.out = zerolog.New(&fallbackWriter{w: f}).With().Timestamp().Logger()
	return s, nil
}

func (s *FileSink) Record(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}

	s.logger.Warn().Err(err).Str("op", op).Msg("recovered error")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Error().Err(err).Str("op", op).Send()
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// fallbackWriter swallows write failures after reporting them on stderr.
type fallbackWriter struct {
	w *os.File
}

func (f *fallbackWriter) Write(p []byte) (int, error) {
	if _, err := f.w.Write(p); err != nil {
		fmt.Fprintf(os.Stderr, "error log write failed: %v: %s", err, p)
	}
	return len(p), nil
}

type nop struct{}

func (nop) Record(context.Context, string, error) {}

// Nop discards everything.
var Nop Sink = nop{}

type Entry struct {
	Op  string
	Err error
}

// Memory keeps recorded errors in memory.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *Memory) Record(_ context.Context, op string, err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Op: op, Err: err})
}

func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func newSink(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) Sink {
	fs, err := NewFileSink(cfg.ErrorLogPath, logger)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.ErrorLogPath).Msg("error log unavailable, errors go to stdout only")
		return &loggerSink{logger: logger}
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return fs.Close()
		},
	})
	return fs
}

type loggerSink struct {
	logger zerolog.Logger
}

func (l *loggerSink) Record(_ context.Context, op string, err error) {
	if err == nil {
		return
	}
	l.logger.Warn().Err(err).Str("op", op).Msg("recovered error")
}

var Module = fx.Provide(newSink)
