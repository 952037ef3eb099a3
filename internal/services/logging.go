package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/campusdesk/import-service/internal/importer"
	"github.com/campusdesk/import-service/internal/models"
)

// LogLevel represents different log levels for service operations
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID stamps the inbound request id onto a context so service
// operation logs correlate with the handler's request logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, userID, sessionID string, entity models.ImportEntity, duration time.Duration, err error) {
	logLevel := LogLevelInfo
	status := "success"

	if err != nil {
		logLevel = LogLevelError
		status = "error"

		// Adjust log level based on error type. Everything the caller
		// could have prevented is a warning, not a service failure.
		if IsValidation(err) || IsBadInput(err) || IsTooLarge(err) {
			logLevel = LogLevelWarn
			status = "rejected"
		} else if IsUnauthorized(err) {
			logLevel = LogLevelWarn
			status = "unauthorized"
		} else if IsConflict(err) {
			logLevel = LogLevelWarn
			status = "conflict"
		} else if IsNotFound(err) {
			logLevel = LogLevelInfo
			status = "not_found"
		} else if importer.IsStoreUnavailable(err) {
			logLevel = LogLevelWarn
			status = "store_unavailable"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
		slog.String("entity", string(entity)),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		// Add caller information for genuine failures
		if logLevel == LogLevelError {
			if pc, file, line, ok := runtime.Caller(2); ok {
				if fn := runtime.FuncForPC(pc); fn != nil {
					attrs = append(attrs,
						slog.String("caller_func", fn.Name()),
						slog.String("caller_file", file),
						slog.Int("caller_line", line),
					)
				}
			}
		}
	}

	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}

	message := fmt.Sprintf("%s operation %s", operation, status)

	switch logLevel {
	case LogLevelDebug:
		if l.config.EnableDebug {
			l.logger.LogAttrs(ctx, slog.LevelDebug, message, attrs...)
		}
	case LogLevelInfo:
		l.logger.LogAttrs(ctx, slog.LevelInfo, message, attrs...)
	case LogLevelWarn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, message, attrs...)
	case LogLevelError:
		l.logger.LogAttrs(ctx, slog.LevelError, message, attrs...)
	}
}

// LogRowErrors records the outcome of a validation pass that rejected
// rows. Only the first few errors are expanded to keep the log usable
// on large files.
func (l *ServiceLogger) LogRowErrors(ctx context.Context, sessionID string, entity models.ImportEntity, rowErrors []models.ImportValidationError) {
	if len(rowErrors) == 0 {
		return
	}

	attrs := []slog.Attr{
		slog.String("session_id", sessionID),
		slog.String("entity", string(entity)),
		slog.Int("error_count", len(rowErrors)),
	}

	for i, err := range rowErrors {
		if i >= 5 {
			break
		}
		attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
			slog.Int("row", err.Row),
			slog.String("column", err.Column),
			slog.String("message", err.Message),
			slog.String("value", err.Value),
		))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Rows rejected during validation", attrs...)
}

// LogDegradedDuplicateCheck records a duplicate snapshot the store could
// not serve. The import continues without the advisory check.
func (l *ServiceLogger) LogDegradedDuplicateCheck(ctx context.Context, sessionID string, entity models.ImportEntity, err error) {
	l.logger.LogAttrs(ctx, slog.LevelWarn, "Duplicate check degraded, continuing without it",
		slog.String("session_id", sessionID),
		slog.String("entity", string(entity)),
		slog.String("error", err.Error()),
	)
}

// LogCommitOutcome records the final tally of a commit pass.
func (l *ServiceLogger) LogCommitOutcome(ctx context.Context, sessionID string, entity models.ImportEntity, state models.ImportState, tally models.CommitTally, duration time.Duration) {
	level := slog.LevelInfo
	if state == models.ImportPartiallyFailed {
		level = slog.LevelWarn
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("Commit finished: %s", state),
		slog.String("session_id", sessionID),
		slog.String("entity", string(entity)),
		slog.String("state", string(state)),
		slog.Int("succeeded", tally.Succeeded),
		slog.Int("failed", tally.Failed),
		slog.Int("skipped_duplicates", tally.SkippedDuplicates),
		slog.Duration("duration", duration),
	)
}

// ===== MIDDLEWARE AND HELPERS =====

// ContextualLogger wraps operations with automatic logging
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	userID    string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string, userID string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(sessionID string, entity models.ImportEntity, err error) {
	duration := time.Since(cl.startTime)
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.userID, sessionID, entity, duration, err)
}
