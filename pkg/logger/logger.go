package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init installs the process-wide logger (called once from main). Console
// output always goes to stderr; File adds a rotated JSON sink.
func Init(opts Options) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if opts.File != "" {
		sink := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(sink),
			level,
		))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	zap.ReplaceGlobals(l)
}

// Sync flushes buffered entries; call before exit.
func Sync() {
	_ = zap.L().Sync()
}

func Infof(format string, v ...any) {
	zap.S().Infof(format, v...)
}

func Warnf(format string, v ...any) {
	zap.S().Warnf(format, v...)
}

func Errorf(format string, v ...any) {
	zap.S().Errorf(format, v...)
}

func Debugf(format string, v ...any) {
	zap.S().Debugf(format, v...)
}

func Fatalf(format string, v ...any) {
	zap.S().Fatalf(format, v...)
}
