package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Analyzed 42 elements (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks reports pipeline and cache events as debug log lines.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnAnalyzeStart(_ context.Context, source, path string) {
	h.logger.Debug("analyze start", "provider", source, "path", path)
}

func (h *logHooks) OnAnalyzeComplete(_ context.Context, source, path string, elements int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("analyze failed", "provider", source, "path", path, "error", err)
		return
	}
	h.logger.Debug("analyze done", "provider", source, "elements", elements, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnResolve(_ context.Context, merged, dropped, warnings int) {
	h.logger.Debug("resolved references", "merged", merged, "dropped", dropped, "warnings", warnings)
}

func (h *logHooks) OnLayoutStart(_ context.Context, view string, nodes, edges int) {
	h.logger.Debug("layout start", "view", view, "nodes", nodes, "edges", edges)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, view, strategy string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "view", view, "error", err)
		return
	}
	h.logger.Debug("layout done", "view", view, "strategy", strategy, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "error", err)
		return
	}
	h.logger.Debug("render done", "formats", formats, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}
