// Package logger builds the zap logger shared by every command.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the log format and verbosity.
type Options struct {
	JSON    bool
	Debug   bool
	Version string
}

// New returns a logger tagged with the service name and build version.
// Console output is the default; JSON is meant for log shippers.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	enc := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		CallerKey:      "caller",
		NameKey:        "logger",
		StacktraceKey:  "stack",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	encoding := "console"
	if opts.JSON {
		encoding = "json"
	}

	version := opts.Version
	if version == "" {
		version = "unknown"
	}
	cfg := zap.Config{
		Encoding:          encoding,
		Level:             level,
		DisableStacktrace: !opts.Debug,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig:     enc,
	}
	return cfg.Build(zap.Fields(
		zap.String("service", "recruiter-service"),
		zap.String("version", version),
	))
}
