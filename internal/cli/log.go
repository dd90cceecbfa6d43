package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotsink/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
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
// Example output: "Rendered graph.png (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks reports sink and cache events at debug level.
// Per-write events are ignored; they would flood the log on large graphs.
type logHooks struct {
	observability.NoopSinkHooks
	logger *log.Logger
}

func (h *logHooks) OnAcquire(renderer string, args []string, err error) {
	if err != nil {
		h.logger.Debug("Renderer failed to start", "renderer", renderer, "err", err)
		return
	}
	h.logger.Debug("Launched renderer", "cmd", strings.Join(args, " "))
}

func (h *logHooks) OnRelease(written int64, held time.Duration, err error) {
	h.logger.Debug("Closed renderer input", "bytes", written, "held", held.Round(time.Millisecond), "err", err)
}

func (h *logHooks) OnExit(renderer string, exitCode int, elapsed time.Duration) {
	h.logger.Debug("Renderer exited", "renderer", renderer, "code", exitCode, "elapsed", elapsed.Round(time.Millisecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("Cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("Cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("Cached", "type", keyType, "bytes", size)
}

var (
	_ observability.SinkHooks  = (*logHooks)(nil)
	_ observability.CacheHooks = (*logHooks)(nil)
)
