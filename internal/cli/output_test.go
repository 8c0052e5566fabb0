package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/testutil"
)

func TestReadSignal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		want    []float64
		wantErr bool
	}{
		{"Lines", "1\n2\n3\n", []float64{1, 2, 3}, false},
		{"Commas", "1,2.5, -3", []float64{1, 2.5, -3}, false},
		{"Mixed", "# header\n\n1 2\t3;4\n5e-1\n", []float64{1, 2, 3, 4, 0.5}, false},
		{"Empty", "", []float64{}, false},
		{"BadNumber", "1\nfoo\n", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ReadSignal(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadSignal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperrors.IsArgumentError(err) || !strings.Contains(err.Error(), "line 2") {
					t.Errorf("expected argument error naming line 2, got %v", err)
				}
				return
			}
			testutil.RequireSliceNearlyEqual(t, got, tt.want, 0)
		})
	}
}

func TestReadSignalFile(t *testing.T) {
	t.Parallel()
	got, err := ReadSignalFile("-", strings.NewReader("7\n8\n"))
	if err != nil || len(got) != 2 {
		t.Fatalf("stdin read: %v, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "signal.txt")
	if err := os.WriteFile(path, []byte("1,2,3"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = ReadSignalFile(path, nil)
	if err != nil || len(got) != 3 {
		t.Fatalf("file read: %v, %v", got, err)
	}

	if _, err := ReadSignalFile(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteResultRoundTrip(t *testing.T) {
	t.Parallel()
	values := []float64{3.25, 5.625, 0.1, -1e-300, 12345678.9}
	var buf bytes.Buffer
	if err := WriteResult(&buf, values); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "3.25\n5.625\n0.1\n") {
		t.Errorf("unexpected output %q", buf.String())
	}
	back, err := ReadSignal(&buf)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, back, values, 0)
}

func TestWriteResultToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "out.txt")
	summary := Summary{Strategy: "direct", FilterLen: 4, SignalLen: 2, Duration: time.Millisecond}
	if err := WriteResultToFile(path, []float64{1, 2}, summary); err != nil {
		t.Fatalf("WriteResultToFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "# Strategy: direct") {
		t.Errorf("missing header in %q", data)
	}
	// The comment header is skipped when reading the file back.
	f, _ := os.Open(path)
	defer f.Close()
	back, err := ReadSignal(f)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, back, []float64{1, 2}, 0)
}

func TestComputeStats(t *testing.T) {
	t.Parallel()
	if (ComputeStats(nil) != Stats{}) {
		t.Error("expected zero stats for empty input")
	}
	got := ComputeStats([]float64{2, -1, 4})
	if got.Min != -1 || got.Max != 4 || got.Sum != 5 {
		t.Errorf("ComputeStats() = %+v", got)
	}
}

func TestDisplaySummary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplaySummary(&buf, Summary{Strategy: "effective", FilterLen: 101, SignalLen: 5000, Duration: 3 * time.Millisecond}, []float64{-0.5, 1})
	out := testutil.StripAnsiCodes(buf.String())
	for _, want := range []string{"effective", "101 / 5000 samples", "3ms", "[-0.5, 1]", "negative values"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
