// Package cli provides the terminal presentation layer of kdeconv: reading
// signals, writing results, progress spinners, colored run summaries and
// shell completion scripts.
package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/kdeconv/internal/ui"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds for
// durations less than a second, and the default string representation otherwise.
//
// Parameters:
//   - d: The duration to format.
//
// Returns:
//   - string: A formatted string representing the duration.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "< 1µs"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// FormatSeconds formats a duration expressed in seconds, as produced by
// benchmark statistics, with the same units as FormatExecutionDuration.
func FormatSeconds(s float64) string {
	return FormatExecutionDuration(time.Duration(s * float64(time.Second)))
}

// ProgressRefreshRate defines the refresh frequency of the spinner.
const ProgressRefreshRate = 200 * time.Millisecond

// Spinner abstracts the terminal spinner so that progress display can be
// tested without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Suffix = suffix
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// noopSpinner is used in quiet mode.
type noopSpinner struct{}

func (noopSpinner) Start()              {}
func (noopSpinner) Stop()               {}
func (noopSpinner) UpdateSuffix(string) {}

// Progress shows a spinner with an elapsed-time label while a long operation
// runs. The spinner library disables itself when out is not a terminal.
type Progress struct {
	mu      sync.Mutex
	s       Spinner
	label   string
	start   time.Time
	stopped bool
}

// StartProgress starts a spinner on out labeled with label. In quiet mode
// nothing is displayed.
func StartProgress(out io.Writer, label string, quiet bool) *Progress {
	var s Spinner = noopSpinner{}
	if !quiet {
		s = newSpinner(spinner.WithWriter(out))
	}
	p := &Progress{s: s, label: label, start: time.Now()}
	s.UpdateSuffix(" " + label)
	s.Start()
	return p
}

// Update replaces the label.
func (p *Progress) Update(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.label = label
	p.s.UpdateSuffix(fmt.Sprintf(" %s (%s)", label, FormatExecutionDuration(time.Since(p.start))))
}

// Stop halts the spinner and returns the elapsed time. Calling Stop more
// than once is safe.
func (p *Progress) Stop() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stopped {
		p.s.Stop()
		p.stopped = true
	}
	return time.Since(p.start)
}

// CLIColorProvider is re-exported for callers of HandleRunError.
type CLIColorProvider = ui.CLIColorProvider
