// Package logger builds the zap loggers shared by the stackchat commands and server.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a console logger writing to stderr, so streamed model
// output on stdout stays clean.
func NewLogger(debug bool) *zap.Logger {
	return NewLoggerTo(os.Stderr, debug)
}

// NewLoggerTo returns a console logger writing to w.
func NewLoggerTo(w io.Writer, debug bool) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core, zap.AddCaller())
}
