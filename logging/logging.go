// Package logging builds the zap loggers used by the advisor commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects log destinations. With neither File nor Stderr set the
// logger discards everything.
type Config struct {
	Level  string // debug, info, warn or error; default info
	File   string // rotated JSON log file
	Stderr bool   // also write JSON lines to stderr
}

// New returns a logger and a function that flushes and closes its outputs.
func New(cfg Config) (*zap.Logger, func(), error) {
	level := zap.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		level = l
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	var (
		cores   []zapcore.Core
		closers []io.Closer
	)
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename: cfg.File, MaxSize: 50, MaxAge: 14, MaxBackups: 5, Compress: true,
		}
		closers = append(closers, lj)
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(lj), level))
	}
	if cfg.Stderr {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	}
	if len(cores) == 0 {
		return zap.NewNop(), func() {}, nil
	}

	logger := zap.New(zapcore.NewTee(cores...))
	cleanup := func() {
		_ = logger.Sync()
		for _, c := range closers {
			_ = c.Close()
		}
	}
	return logger, cleanup, nil
}

// Timed logs the elapsed time of a call at debug level:
//
//	defer logging.Timed(logger, "roster.load")()
func Timed(logger *zap.Logger, name string) func() {
	start := time.Now()
	return func() {
		logger.Debug("timed",
			zap.String("func", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	}
}
