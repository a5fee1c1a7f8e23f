package pathstore

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with path-specific fields.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler at info level on stderr is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger logs JSON lines to stderr at the given minimum level.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger logs human-readable lines to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))
}

// WithHandle adds a handle field.
func (l *Logger) WithHandle(h Handle) *Logger {
	return &Logger{Logger: l.Logger.With("handle", h.String())}
}

// WithDimension adds a dimensionality field.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{Logger: l.Logger.With("dimensionality", dim)}
}

func (l *Logger) LogCreate(ctx context.Context, h Handle, dim, capacityHint int, err error) {
	dl := l.WithDimension(dim)
	if err != nil {
		dl.ErrorContext(ctx, "create failed",
			"capacity_hint", capacityHint,
			"error", err,
		)
		return
	}
	dl.WithHandle(h).DebugContext(ctx, "create completed", "capacity_hint", capacityHint)
}

func (l *Logger) LogSetAxis(ctx context.Context, h Handle, axis, samples int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "set axis failed",
			"handle", h.String(),
			"axis", axis,
			"samples", samples,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "set axis completed",
		"handle", h.String(),
		"axis", axis,
		"samples", samples,
	)
}

func (l *Logger) LogSerialize(ctx context.Context, h Handle, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "serialize failed",
			"handle", h.String(),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "serialize completed",
		"handle", h.String(),
		"bytes", size,
	)
}

func (l *Logger) LogDeserialize(ctx context.Context, h Handle, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "deserialize failed",
			"bytes", size,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "deserialize completed",
		"handle", h.String(),
		"bytes", size,
	)
}

func (l *Logger) LogDestroy(ctx context.Context, h Handle, err error) {
	if err != nil {
		l.ErrorContext(ctx, "destroy failed",
			"handle", h.String(),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "destroy completed", "handle", h.String())
}

// LogExport logs a snapshot export.
func (l *Logger) LogExport(ctx context.Context, version uint64, paths int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"version", version,
			"paths", paths,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "export committed",
		"version", version,
		"paths", paths,
	)
}

// LogImport logs a snapshot import.
func (l *Logger) LogImport(ctx context.Context, version uint64, paths int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "import failed",
			"version", version,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "import completed",
		"version", version,
		"paths", paths,
	)
}
