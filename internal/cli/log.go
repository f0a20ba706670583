// Package cli implements the diagrammer command-line interface.
//
// The commands edit the same stored diagram the HTTP server serves: each
// invocation loads the diagram from the configured backend, applies one
// operation and writes the result back.
//
// # Commands
//
//   - serve: run the HTTP API for a browser canvas
//   - node, edge: add, edit, remove and list entities
//   - changes apply: fold a file of change descriptors into the diagram
//   - show, clear, export, view fit: whole-diagram operations
//   - store path: print where the diagram is kept
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried in the command's context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger that writes timestamped lines ("14:32:01.45")
// to w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one operation and logs its completion.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, rounded to the millisecond, followed
// by any key-value pairs:
//
//	Exported svg elapsed=12ms bytes=5120
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append([]any{"elapsed", elapsed}, keyvals...)...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx. PersistentPreRunE does this for every
// command.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
