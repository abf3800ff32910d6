// Package cli implements the timenexus command-line interface.
//
// The commands cover the life of a multilayer network: building it from
// tables, checking and copying it, extracting a subnetwork and drawing
// the flattened view. The CLI is built using cobra and logs with
// charmbracelet/log.
//
// # Commands
//
//   - build: Convert a network definition and its tables into graphs
//   - import: Read a flattened graph and derive its layers
//   - validate: Check that graphs follow the flattened layout
//   - copy: Keep some layers of a flattened graph
//   - normalize: Set edge directions and merge multi-edges
//   - extract: Run PathLinker or ANAT with an extraction strategy
//   - view, export: Draw the flattened view, write tables as CSV
//   - sessions, cache, serve: Manage stored networks, cached results, the API
//
// Networks are read from a collection directory, a flattened graph JSON
// file, a definition file (.toml, .yaml) or a session ("session:<id>").
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so extraction progress can be reported.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/timenexus/timenexus/pkg/errors"
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

// progress logs the completion of an operation with its elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Built network demo (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logWarnings reports non-fatal problems at the level of their severity.
func logWarnings(l *log.Logger, warnings []*errors.Error) {
	for _, w := range warnings {
		if w.Severity == errors.SeverityInfo {
			l.Info(w.Title, "message", w.Message)
			continue
		}
		l.Warn(w.Title, "message", w.Message)
	}
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
