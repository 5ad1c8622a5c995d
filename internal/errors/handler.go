package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/citrine-bot/pkg/logger"
	"github.com/Proton-105/citrine-bot/pkg/metrics"
)

const defaultUserMessage = "Something went wrong. Please try again later"

// Reporter forwards an error to an external tracker.
type Reporter func(ctx context.Context, err error)

// Handler logs application errors, counts them and reports severe ones.
type Handler struct {
	log    *slog.Logger
	report Reporter
}

// NewHandler constructs a Handler. With sentryEnabled, high and critical
// errors go to Sentry, which must already be initialised.
func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	var report Reporter
	if sentryEnabled {
		report = captureSentry
	}
	return NewHandlerWithReporter(log, report)
}

// NewHandlerWithReporter constructs a Handler that reports through report; nil disables reporting.
func NewHandlerWithReporter(log *slog.Logger, report Reporter) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, report: report}
}

// Handle records err and returns the message safe to show a user and whether the operation may be retried.
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	appErr := describe(err)
	log := logger.FromContext(ctx, h.log)

	msg := "application error"
	code := appErr.Code
	if code == "" {
		msg, code = "unknown error", "unknown"
	}

	log.Error(msg,
		slog.String("code", appErr.Code),
		slog.String("message", err.Error()),
		slog.String("severity", string(appErr.Severity)),
		slog.Bool("retryable", appErr.Retryable),
	)
	metrics.RecordError(code, string(appErr.Severity))

	if h.report != nil && (appErr.Severity == SeverityHigh || appErr.Severity == SeverityCritical) {
		h.report(ctx, err)
	}

	if appErr.UserMessage == "" {
		return defaultUserMessage, appErr.Retryable
	}
	return appErr.UserMessage, appErr.Retryable
}

// describe returns the AppError inside err, or a high-severity stand-in for foreign errors.
func describe(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr
	}
	return &AppError{Severity: SeverityHigh}
}

func captureSentry(ctx context.Context, err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr != nil {
			scope.SetTag("code", appErr.Code)
			scope.SetTag("severity", string(appErr.Severity))
		}
		if id := logger.CorrelationIDFromContext(ctx); id != "" {
			scope.SetTag("correlation_id", id)
		}
		sentry.CaptureException(err)
	})
}
