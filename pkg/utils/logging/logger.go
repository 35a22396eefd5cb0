package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const fileTimestampLayout = "2006-01-02_15-04-05"

// InitLogger builds a logger writing Info and above to stdout and everything to a JSON file
// named <env>_<timestamp>.log in dir. The returned cleanup flushes the logger and closes
// the file; it is safe to call more than once.
func InitLogger(env, dir string) (*zap.Logger, func() error, error) {
	return newLogger(env, dir, os.Stdout, time.Now())
}

func newLogger(env, dir string, console zapcore.WriteSyncer, now time.Time) (*zap.Logger, func() error, error) {
	file, err := openLogFile(env, dir, now)
	if err != nil {
		return nil, nil, err
	}

	logger := zap.New(
		zapcore.NewTee(consoleCore(console), fileCore(file)),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	var once sync.Once
	var closeErr error
	cleanup := func() error {
		once.Do(func() {
			// Syncing a terminal stdout fails on some platforms; only the file matters here
			_ = logger.Sync()
			closeErr = errors.Join(file.Sync(), file.Close())
		})
		return closeErr
	}

	return logger, cleanup, nil
}

func openLogFile(env, dir string, now time.Time) (*os.File, error) {
	if env == "" {
		env = "default"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("%s_%s.log", env, now.Format(fileTimestampLayout)))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// consoleCore is colored and human-readable
func consoleCore(out zapcore.WriteSyncer) zapcore.Core {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), out, zapcore.InfoLevel)
}

func fileCore(file *os.File) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(file), zapcore.DebugLevel)
}
