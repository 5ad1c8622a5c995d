// Package errors defines the application error type shared by the engine,
// the transport and the storage layers, plus central handling and retry.
package errors

import (
	"fmt"
	"time"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	CodeValidation  = "E100"
	CodeStorage     = "E200"
	CodeExternalAPI = "E300"
	CodeRateLimit   = "E500"
	CodeModuleFault = "E600"
	CodeCommand     = "E700"
)

// Sentinels for errors.Is matching by code.
var (
	ErrValidation  = &AppError{Code: CodeValidation}
	ErrStorage     = &AppError{Code: CodeStorage}
	ErrExternalAPI = &AppError{Code: CodeExternalAPI}
	ErrRateLimit   = &AppError{Code: CodeRateLimit}
	ErrModuleFault = &AppError{Code: CodeModuleFault}
	ErrCommand     = &AppError{Code: CodeCommand}
)

// AppError carries an error code, a log message and a message safe to show users.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	// RetryAfter is the minimum wait before a retry, when the remote side asked for one.
	RetryAfter time.Duration
	cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches another AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Code != "" && e.Code == t.Code
}

func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        CodeValidation,
		Message:     msg,
		UserMessage: "Invalid input. " + msg,
		Severity:    SeverityLow,
	}
}

func NewStorageError(cause error) *AppError {
	return &AppError{
		Code:        CodeStorage,
		Message:     fmt.Sprintf("storage: %v", cause),
		UserMessage: "Temporary problem, please try again later",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

func NewExternalAPIError(apiName string, cause error) *AppError {
	return &AppError{
		Code:        CodeExternalAPI,
		Message:     fmt.Sprintf("%s: %v", apiName, cause),
		UserMessage: "Service temporarily unavailable",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewRateLimitError reports a remote flood limit; retryAfter is in seconds.
func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        CodeRateLimit,
		Message:     fmt.Sprintf("rate limited: retry after %ds", retryAfter),
		UserMessage: fmt.Sprintf("Too many requests. Try again in %d seconds", retryAfter),
		Severity:    SeverityLow,
		Retryable:   true,
		RetryAfter:  time.Duration(retryAfter) * time.Second,
	}
}

// NewModuleFaultError wraps an error or recovered panic raised by a module while handling an event.
func NewModuleFaultError(module, event string, cause error) *AppError {
	return &AppError{
		Code:        CodeModuleFault,
		Message:     fmt.Sprintf("module %s failed on %s: %v", module, event, cause),
		UserMessage: "Something went wrong while handling your message",
		Severity:    SeverityHigh,
		cause:       cause,
	}
}

// NewCommandError wraps a fault raised by a command handler.
func NewCommandError(command string, cause error) *AppError {
	return &AppError{
		Code:        CodeCommand,
		Message:     fmt.Sprintf("command %s failed: %v", command, cause),
		UserMessage: "The command failed",
		Severity:    SeverityMedium,
		cause:       cause,
	}
}
