// Package logging builds the zap loggers used across subkana.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how much is logged.
type Options struct {
	Verbose bool   // Debug level on the console
	File    string // Optional rotating JSON log file
	Quiet   bool   // No console output, for full-screen UIs
}

// New builds a logger writing human-readable lines to stderr and, when
// opts.File is set, JSON lines to a rotating file.
func New(opts Options) *zap.Logger {
	var cores []zapcore.Core
	if !opts.Quiet {
		cores = append(cores, consoleCore(opts.Verbose))
	}
	if opts.File != "" {
		cores = append(cores, fileCore(opts.File))
	}

	switch len(cores) {
	case 0:
		return zap.NewNop()
	case 1:
		return zap.New(cores[0], zap.AddCaller())
	default:
		return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	}
}

func consoleCore(verbose bool) zapcore.Core {
	consoleLevel := zap.WarnLevel
	if verbose {
		consoleLevel = zap.DebugLevel
	}
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		consoleLevel,
	)
}

func fileCore(path string) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // Megabytes
		MaxBackups: 3,
		MaxAge:     14, // Days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		zap.DebugLevel,
	)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
