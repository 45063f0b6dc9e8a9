// Package cli is the brickguide command line: the guide server, offline
// rendering, blueprint management and a terminal guide, on cobra with
// charmbracelet/log for diagnostics.
//
// # Commands
//
//   - serve: Run the web guide, acknowledgment endpoint and storage page
//   - render: Write step previews, control views or support graphs
//   - list, inspect, import: Browse and add blueprints
//   - guide: Step through blueprints in the terminal
//   - ack: Send an acknowledgment to a running server
//   - cache: Manage the file artifact cache
//   - config show: Print the effective configuration
//
// Diagnostics go to the writer passed to [New]; --verbose (-v) lowers the
// level to debug. Command results go to standard output.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger that stamps each line with a short wall-clock
// time ("14:32:01.45") and drops records below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one command; done logs the message with the elapsed time
// rounded to milliseconds, e.g. "Rendered step of house (1.234s)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
