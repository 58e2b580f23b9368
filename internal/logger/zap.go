package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

const (
	defaultZapLevel = zapcore.InfoLevel

	// rotation limits for the optional log file
	maxFileSizeMB  = 10
	maxFileBackups = 5
	maxFileAgeDays = 30
)

// toZapLevel converts a textual level to zapcore.Level using known level constants.
func toZapLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return defaultZapLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// newCore writes console lines to stdout, or JSON lines to a rotated file when path is set.
func newCore(level zapcore.Level, path string) zapcore.Core {
	if path == "" {
		ws := zapcore.Lock(os.Stdout) // thread-safe writer
		return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), ws, zap.NewAtomicLevelAt(level))
	}
	ws := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxFileSizeMB,
		MaxBackups: maxFileBackups,
		MaxAge:     maxFileAgeDays,
		Compress:   true,
	})
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), ws, zap.NewAtomicLevelAt(level))
}

func newZapLogger(opts Options) *Logger {
	core := newCore(toZapLevel(opts.Level), opts.File)
	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
	}
}
