package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// SpinnerProgressReporter shows the running step next to a spinner
type SpinnerProgressReporter struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	out     io.Writer
}

// NewSpinnerProgressReporter creates a new spinner-based progress reporter
func NewSpinnerProgressReporter() *SpinnerProgressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.HideCursor = false

	return &SpinnerProgressReporter{
		spinner: s,
		out:     os.Stderr,
	}
}

// OnProgress handles progress events
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !event.Spinner {
		if r.spinner.Active() {
			r.spinner.Stop()
		}
		return
	}

	suffix := " " + event.Message
	if event.Total > 0 {
		suffix = fmt.Sprintf(" [%d/%d] %s", event.Current, event.Total, event.Message)
	}
	r.spinner.Suffix = suffix
	if !r.spinner.Active() {
		r.spinner.Start()
	}
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.print(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.print(color.New(color.FgRed), message)
}

func (r *SpinnerProgressReporter) print(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Stop spinner temporarily
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	c.Fprintln(r.out, message)

	if wasActive {
		r.spinner.Start()
	}
}

// Stop stops the spinner. Call it before rendering results.
func (r *SpinnerProgressReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Ensure SpinnerProgressReporter implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
