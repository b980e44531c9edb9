package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"thermarun/internal/config"
	"thermarun/internal/logger"
)

// FileSink appends events as JSON lines to a rotating file.
type FileSink struct {
	writer *lumberjack.Logger

	mu     sync.Mutex
	closed bool
}

// NewFileSink creates a rotating JSON-lines sink.
func NewFileSink(cfg config.FileSinkConfig) (*FileSink, error) {
	dir := filepath.Dir(cfg.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create event log directory: %w", err)
		}
	}

	log := logger.WithComponent("file-sink")
	log.Info().
		Str("file_path", cfg.FilePath).
		Msg("File sink initialized")

	return &FileSink{
		writer: &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		},
	}, nil
}

// Emit appends one JSON line.
func (s *FileSink) Emit(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("sink is closed")
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := s.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Close flushes and closes the rotating writer.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.writer.Close()
}
