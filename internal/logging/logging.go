// Package logging builds the process logger from ASH_CFG_LOG_* settings.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ashlog/ash/internal/ashenv"
)

// New constructs a zap logger configured by ASH_CFG_LOG_LEVEL,
// ASH_CFG_LOG_FILE and ASH_CFG_LOG_DATE_FMT. Every line carries the session
// id so concurrent shells can be told apart in a shared log file. Logger
// construction never fails the process; on error a no-op logger is
// returned.
func New(cfg *ashenv.Config, sessionID string) *zap.Logger {
	level := zapcore.InfoLevel
	if v, ok := cfg.GetString("LOG_LEVEL"); ok {
		if parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(v))); err == nil {
			level = parsed
		}
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	if layout, ok := cfg.GetString("LOG_DATE_FMT"); ok && layout != "" {
		enc.EncodeTime = zapcore.TimeEncoderOfLayout(layout)
	}

	outputs := []string{"stderr"}
	if f, ok := cfg.GetString("LOG_FILE"); ok && f != "" {
		outputs = []string{f}
	}

	zcfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    enc,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := zcfg.Build(zap.Fields(zap.String("session", sessionID)))
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
