package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lixenwraith/scape/config"
	"github.com/rs/zerolog"
)

const megabyte = 1 << 20

// setupLogging opens the log file when debug is set and returns a logger writing to it
// Without debug all output is discarded; stdout and stderr belong to the terminal
// An existing file above MaxSizeMB is rotated to a timestamped name
func setupLogging(cfg config.LogConfig, level zerolog.Level, debug bool) (*os.File, zerolog.Logger) {
	if !debug {
		return nil, zerolog.New(io.Discard).Level(zerolog.Disabled)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, zerolog.New(io.Discard).Level(zerolog.Disabled)
	}

	rotateLog(cfg.File, int64(cfg.MaxSizeMB)*megabyte)

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, zerolog.New(io.Discard).Level(zerolog.Disabled)
	}

	if level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
	logger.Info().Str("file", cfg.File).Msg("logging started")
	return f, logger
}

// rotateLog renames path when it exceeds maxSize
func rotateLog(path string, maxSize int64) {
	if maxSize <= 0 {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxSize {
		return
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	rotated := fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102-150405.000"), ext)
	_ = os.Rename(path, rotated)
}
