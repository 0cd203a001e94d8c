package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds the global zap logger and installs it with zap.ReplaceGlobals.
// Output is "console", "file" or "both"; files are written as JSON without colors.
func InitLogger(cfg Config) (*zap.Logger, error) {
	level := parseLevel(cfg.LogLevel)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	consoleCore := func() zapcore.Core {
		return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level)
	}
	fileCore := func() (zapcore.Core, error) {
		fileEncoderConfig := encoderConfig
		fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		w, err := openLogFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		return zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(w), level), nil
	}

	var cores []zapcore.Core
	switch strings.ToLower(cfg.LogOutput) {
	case "file":
		c, err := fileCore()
		if err != nil {
			return nil, err
		}
		cores = append(cores, c)
	case "both":
		c, err := fileCore()
		if err != nil {
			return nil, err
		}
		cores = append(cores, consoleCore(), c)
	default:
		cores = append(cores, consoleCore())
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	zap.ReplaceGlobals(logger)
	logger.Sugar().Infof("logger initialized: output=%s, level=%s", cfg.LogOutput, level)
	return logger, nil
}

func openLogFile(logFile string) (*os.File, error) {
	if dir := filepath.Dir(logFile); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	return os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
