package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"electronicos-api/internal/utils"

	"go.opentelemetry.io/otel/trace"
)

var (
	instance *slog.Logger
	once     sync.Once
	level    = new(slog.LevelVar)
)

// Instance is the process wide JSON logger on stdout.
func Instance() *slog.Logger {
	once.Do(func() {
		instance = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
	})

	return instance
}

// SetLevel accepts debug, info, warn or error. Unknown names fall back to info.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelDebug, msg, attrs)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, msg, attrs)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, msg, attrs)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, msg, attrs)
}

// emit writes to stdout and mirrors the record to the remote sink. Records
// below the configured level are dropped on both paths.
func emit(ctx context.Context, lvl slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !Instance().Enabled(ctx, lvl) {
		return
	}
	attrs = enrich(ctx, attrs...)
	Instance().LogAttrs(ctx, lvl, msg, attrs...)
	sendLog(strings.ToLower(lvl.String()), msg, attrs)
}

// enrich appends trace correlation ids when ctx carries a valid span.
func enrich(ctx context.Context, attrs ...slog.Attr) []slog.Attr {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return attrs
	}
	return append(attrs,
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
		slog.String("hostname", utils.GetHost()),
	)
}
