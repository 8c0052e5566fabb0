package cli

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"
)

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "< 1µs"},
		{500 * time.Microsecond, "500µs"},
		{42 * time.Millisecond, "42ms"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.in); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatSeconds(0.002); got != "2ms" {
		t.Errorf("FormatSeconds(0.002) = %q, want 2ms", got)
	}
}

type MockSpinner struct {
	mu       sync.Mutex
	started  int
	stopped  int
	suffixes []string
}

func (m *MockSpinner) Start() { m.mu.Lock(); m.started++; m.mu.Unlock() }
func (m *MockSpinner) Stop()  { m.mu.Lock(); m.stopped++; m.mu.Unlock() }
func (m *MockSpinner) UpdateSuffix(s string) {
	m.mu.Lock()
	m.suffixes = append(m.suffixes, s)
	m.mu.Unlock()
}

// TestProgressLifecycle replaces the package spinner factory and therefore
// does not run in parallel.
func TestProgressLifecycle(t *testing.T) {
	mock := &MockSpinner{}
	orig := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return mock }
	t.Cleanup(func() { newSpinner = orig })

	p := StartProgress(io.Discard, "convolving", false)
	p.Update("comparing")
	p.Stop()
	p.Stop()
	p.Update("ignored after stop")

	if mock.started != 1 || mock.stopped != 1 {
		t.Errorf("started=%d stopped=%d, want 1/1", mock.started, mock.stopped)
	}
	if len(mock.suffixes) != 2 || mock.suffixes[0] != " convolving" {
		t.Errorf("unexpected suffixes %q", mock.suffixes)
	}
}

func TestProgressQuiet(t *testing.T) {
	t.Parallel()
	p := StartProgress(io.Discard, "quiet", true)
	p.Update("still quiet")
	if p.Stop() < 0 {
		t.Error("negative elapsed time")
	}
}
