package kit

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerOption func(*loggerOptions)

type loggerOptions struct {
	file       string
	maxSizeMB  int
	maxBackups int
	level      zapcore.Level
}

// WithFile mirrors the log stream into a size-rotated file.
func WithFile(path string, maxSizeMB, maxBackups int) LoggerOption {
	return func(o *loggerOptions) {
		o.file = path
		o.maxSizeMB = maxSizeMB
		o.maxBackups = maxBackups
	}
}

func WithLevel(level string) LoggerOption {
	return func(o *loggerOptions) {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(level)); err == nil {
			o.level = l
		}
	}
}

func NewLogger(service string, opts ...LoggerOption) *zap.Logger {
	o := loggerOptions{level: zapcore.InfoLevel}
	for _, opt := range opts {
		opt(&o)
	}

	if o.file == "" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(o.level)
		cfg.InitialFields = map[string]any{"service": service}
		l, err := cfg.Build()
		if err != nil {
			return zap.NewNop()
		}
		return l
	}

	rotated := &lumberjack.Logger{
		Filename:   o.file,
		MaxSize:    o.maxSizeMB,
		MaxBackups: o.maxBackups,
		Compress:   true,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout), zapcore.AddSync(rotated)),
		o.level,
	)

	return zap.New(core, zap.AddCaller()).With(zap.String("service", service))
}

// OrNop lets packages accept a nil logger.
func OrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// LoggerOptionsFromEnv reads LOG_LEVEL and the LOG_FILE rotation settings.
func LoggerOptionsFromEnv() []LoggerOption {
	opts := []LoggerOption{WithLevel(Getenv("LOG_LEVEL", "info"))}
	if path := os.Getenv("LOG_FILE"); path != "" {
		opts = append(opts, WithFile(path, GetenvInt("LOG_MAX_SIZE_MB", 50), GetenvInt("LOG_MAX_BACKUPS", 3)))
	}
	return opts
}
