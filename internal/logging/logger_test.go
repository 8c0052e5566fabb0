package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q (%v)", line, err)
	}
	return entry
}

func TestZerologAdapterFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewLogger(&buf, "engine")
	log.Info("convolved",
		String("strategy", "direct"),
		Int("filter_len", 7),
		Float64("scale", 0.25),
		Bool("parallel", true),
	)

	entry := decodeLine(t, &buf)
	checks := map[string]any{
		"component":  "engine",
		"message":    "convolved",
		"level":      "info",
		"strategy":   "direct",
		"filter_len": float64(7),
		"scale":      0.25,
		"parallel":   true,
	}
	for k, want := range checks {
		if got := entry[k]; got != want {
			t.Errorf("field %q = %v, want %v", k, got, want)
		}
	}
}

func TestZerologAdapterError(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewLogger(&buf, "server").Error("request failed", errors.New("boom"))
	entry := decodeLine(t, &buf)
	if entry["error"] != "boom" || entry["level"] != "error" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestWithLevelFiltersDebug(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewLogger(&buf, "app").WithLevel(zerolog.InfoLevel)
	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug entry leaked through info level: %q", buf.String())
	}
	log.Printf("shown %d", 1)
	if !strings.Contains(buf.String(), "shown 1") {
		t.Errorf("expected Printf output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{" WARN ", zerolog.WarnLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"loud", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	t.Parallel()
	var l Logger = NewNopLogger()
	l.Info("ignored")
	l.Error("ignored", errors.New("x"))
	l.Println("ignored")
}

func TestNewRotatingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "kdeconv.log")
	w := NewRotatingFile(path)
	NewLogger(w, "app").Info("written to file")
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("unexpected log file content %q", data)
	}
}
