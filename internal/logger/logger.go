package logger

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op until Init is called so that
// packages and tests can log unconditionally.
var Log = zap.NewNop()

// Init configures the global logger to write JSON lines to stdout with
// timestamps rendered in the named IANA timezone (UTC when unknown).
func Init(level, timezone string) *zap.Logger {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	Log = build(level, os.Stdout, loc)
	return Log
}

// New builds a JSON logger writing to w at the given level ("debug", "info", ...).
// Unknown levels fall back to info.
func New(level string, w io.Writer) *zap.Logger {
	return build(level, w, time.UTC)
}

func build(level string, w io.Writer, loc *time.Location) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		zapcore.ISO8601TimeEncoder(t.In(loc), enc)
	}
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(w), lvl)
	return zap.New(core, zap.AddCaller())
}
