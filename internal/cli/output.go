package cli

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/ui"
)

// ReadSignal parses numbers from r. Values may be separated by newlines,
// commas, semicolons or whitespace; blank lines and lines starting with '#'
// are ignored.
//
// Returns:
//   - []float64: The values in input order.
//   - error: An invalid-argument error naming the offending line, or an
//     I/O error.
func ReadSignal(r io.Reader) ([]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	values := make([]float64, 0, 1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		})
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, apperrors.NewValidationError("signal", fmt.Sprintf("line %d: not a number: %q", line, f), f)
			}
			values = append(values, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read signal: %w", err)
	}
	return values, nil
}

// ReadSignalFile reads a signal from path. An empty path or "-" reads stdin.
func ReadSignalFile(path string, stdin io.Reader) ([]float64, error) {
	if path == "" || path == "-" {
		return ReadSignal(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open signal file: %w", err)
	}
	defer f.Close()
	return ReadSignal(f)
}

// WriteResult writes one value per line using the shortest representation
// that round-trips.
func WriteResult(w io.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for _, v := range values {
		buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteResultToFile writes values to path preceded by a commented header.
//
// Parameters:
//   - path: The destination file. Parent directories are created.
//   - values: The convolution result.
//   - summary: Run metadata for the header.
//
// Returns:
//   - error: An error if the file cannot be written.
func WriteResultToFile(path string, values []float64, summary Summary) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# kdeconv result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Strategy: %s\n", summary.Strategy)
	fmt.Fprintf(file, "# Filter length: %d\n", summary.FilterLen)
	fmt.Fprintf(file, "# Signal length: %d\n", summary.SignalLen)
	fmt.Fprintf(file, "# Duration: %s\n", summary.Duration)
	if err := WriteResult(file, values); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return file.Close()
}

// Summary describes a finished convolution for display.
type Summary struct {
	Strategy  string
	FilterLen int
	SignalLen int
	Duration  time.Duration
}

// Stats are the aggregate values shown in the run summary.
type Stats struct {
	Min, Max, Sum float64
}

// ComputeStats returns the aggregate values of a result. An empty result
// yields zero values.
func ComputeStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	return Stats{Min: floats.Min(values), Max: floats.Max(values), Sum: floats.Sum(values)}
}

// DisplaySummary prints a colored description of a finished convolution.
func DisplaySummary(out io.Writer, s Summary, values []float64) {
	st := ComputeStats(values)
	ui.LabelPrinter.Fprint(out, "Strategy        : ")
	fmt.Fprintln(out, s.Strategy)
	ui.LabelPrinter.Fprint(out, "Filter / signal : ")
	fmt.Fprintf(out, "%d / %d samples\n", s.FilterLen, s.SignalLen)
	ui.LabelPrinter.Fprint(out, "Duration        : ")
	fmt.Fprintln(out, FormatExecutionDuration(s.Duration))
	ui.LabelPrinter.Fprint(out, "Range           : ")
	fmt.Fprintf(out, "[%s, %s]\n", formatValue(st.Min), formatValue(st.Max))
	ui.LabelPrinter.Fprint(out, "Sum             : ")
	fmt.Fprintln(out, formatValue(st.Sum))
	if st.Min < 0 {
		ui.WarningPrinter.Fprintln(out, "Note: the result contains negative values.")
	}
}

// DisplaySaved reports a written output file.
func DisplaySaved(out io.Writer, path string) {
	ui.SuccessPrinter.Fprintf(out, "✓ Result saved to: %s\n", path)
}

func formatValue(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprint(v)
	}
	return strconv.FormatFloat(v, 'g', 8, 64)
}
