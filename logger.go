package rangego

import (
	"context"
	"log/slog"
	"os"
)

// Logger emits the engine's structured operation logs. It embeds
// *slog.Logger, so every slog method is available on it directly.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps an slog handler. A nil handler falls back to text on
// stderr at Info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		return NewTextLogger(slog.LevelInfo)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger logs human-readable lines to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger logs one JSON record per operation to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger drops everything. It is the default when WithLogger is not
// given.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// LogIndex records one document add. Successes log at Debug so bulk
// ingest stays quiet.
func (l *Logger) LogIndex(ctx context.Context, docID uint32, fields int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index failed", "doc", docID, "fields", fields, "error", err)
		return
	}
	l.DebugContext(ctx, "index completed", "doc", docID, "fields", fields)
}

// LogFlush records a segment flush.
func (l *Logger) LogFlush(ctx context.Context, segmentID uint64, docs uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed", "segment", segmentID, "docs", docs, "error", err)
		return
	}
	l.InfoContext(ctx, "flush completed", "segment", segmentID, "docs", docs)
}

// LogSearch records a query execution.
func (l *Logger) LogSearch(ctx context.Context, query string, hits int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed", "query", query, "error", err)
		return
	}
	l.DebugContext(ctx, "search completed", "query", query, "hits", hits)
}

// LogCommit records a manifest commit.
func (l *Logger) LogCommit(ctx context.Context, generation uint64, segments int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed", "generation", generation, "segments", segments, "error", err)
		return
	}
	l.InfoContext(ctx, "commit completed", "generation", generation, "segments", segments)
}

// LogOpen records an engine open against a manifest generation.
func (l *Logger) LogOpen(ctx context.Context, generation uint64, segments int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed", "error", err)
		return
	}
	l.InfoContext(ctx, "index opened", "generation", generation, "segments", segments)
}
