// Package logger builds the application's slog.Logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogsentry "github.com/samber/slog-sentry/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Proton-105/citrine-bot/pkg/config"
)

// New creates a structured logger from cfg. Records pass through MaskingHandler
// and, when Sentry is enabled, errors are also forwarded to Sentry.
func New(cfg config.Config) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Logger.Level)
	if err != nil {
		return nil, err
	}

	out := writer(cfg.Logger)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Logger.Format) {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if cfg.Sentry.Enabled {
		handler = newTeeHandler(handler, slogsentry.Option{
			Level:     slog.LevelError,
			AddSource: true,
		}.NewSentryHandler())
	}

	return slog.New(NewMaskingHandler(handler)).With(
		slog.String("service", "citrine-bot"),
		slog.String("env", cfg.AppEnv),
	), nil
}

// InitSentry initialises the Sentry client and returns a flush func to call on exit.
func InitSentry(cfg config.SentryConfig, release string) (func(), error) {
	if !cfg.Enabled {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		SampleRate:       cfg.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}

	return func() { sentry.Flush(2 * time.Second) }, nil
}

func writer(cfg config.LoggerConfig) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}

	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}

func parseLevel(level string) (slog.Level, error) {
	if level == "" {
		return slog.LevelInfo, nil
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return l, nil
}
