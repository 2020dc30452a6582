// Package logging builds the process zap logger from configuration.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nhle/taskboard/internal/model"
)

// New creates a logger writing to stderr.
func New(cfg model.LogConfig) (*zap.Logger, error) {
	return build(cfg, zapcore.Lock(os.Stderr))
}

func build(cfg model.LogConfig, out zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	var enc zapcore.Encoder
	switch cfg.Format {
	case "json", "":
		enc = zapcore.NewJSONEncoder(encoderConfig())
	case "console":
		enc = zapcore.NewConsoleEncoder(encoderConfig())
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	core := zapcore.NewCore(enc, out, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func encoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderCfg
}
