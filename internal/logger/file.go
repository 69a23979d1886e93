package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Settings controls the global logger set up by Configure.
type Settings struct {
	// Level is the minimum level written to both outputs.
	Level zapcore.Level
	// File enables a rotated JSON log file when not empty.
	File string
	// MaxSizeMB is the size of a log file before it gets rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to keep.
	MaxBackups int
	// MaxAgeDays is the number of days to keep rotated files.
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
}

// Configure replaces the global logger according to settings and returns
// a function that flushes and closes the outputs.
func Configure(settings *Settings) func() {
	if settings == nil {
		return func() {}
	}

	SetLevel(settings.Level)

	if settings.File == "" {
		SetLogger(New(defaultLevel))

		return func() {
			// Sync fails on terminals and pipes; nothing to do about it.
			_ = global.Sync()
		}
	}

	rotator := &lumberjack.Logger{
		Filename:   settings.File,
		MaxSize:    settings.MaxSizeMB,
		MaxBackups: settings.MaxBackups,
		MaxAge:     settings.MaxAgeDays,
		Compress:   settings.Compress,
	}

	fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewTee(
		newConsoleCore(defaultLevel),
		zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), defaultLevel),
	)

	SetLogger(zap.New(core).Sugar())

	return func() {
		_ = global.Sync()
		_ = rotator.Close()
	}
}
