// Package orchestration runs several convolution variants on the same input
// concurrently and checks that they agree.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/agbru/kdeconv/internal/cli"
	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/ui"
)

// DefaultTolerance is the largest accepted deviation between two variants,
// relative to the largest magnitude of the reference result.
const DefaultTolerance = 1e-9

// ConvolutionResult encapsulates the outcome of a single variant run.
type ConvolutionResult struct {
	// Name identifies the variant (e.g. "effective/parallel").
	Name string
	// Result is the convolved signal. It is nil if an error occurred.
	Result []float64
	// Duration is the time taken by the run.
	Duration time.Duration
	// Deviation is the maximum absolute difference from the reference
	// result. It is filled in by AnalyzeComparisonResults.
	Deviation float64
	// Err contains any error that occurred during the run.
	Err error
}

// ExecuteConvolutions runs every runner on signal concurrently.
//
// A failing runner does not stop the others: its error is recorded in its
// result. Results keep the order of runners.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - runners: The variants to execute.
//   - signal: The shared, read-only input.
//   - out: The io.Writer for the progress spinner.
//   - quiet: Disables the spinner.
//
// Returns:
//   - []ConvolutionResult: One result per runner.
func ExecuteConvolutions(ctx context.Context, runners []Runner, signal []float64, out io.Writer, quiet bool) []ConvolutionResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]ConvolutionResult, len(runners))

	progress := cli.StartProgress(out, fmt.Sprintf("Running %d variants...", len(runners)), quiet)
	defer progress.Stop()
	var done atomic.Int32

	for i, r := range runners {
		g.Go(func() error {
			start := time.Now()
			res, err := r.Run(ctx, signal)
			results[i] = ConvolutionResult{
				Name: r.Name(), Result: res, Duration: time.Since(start), Err: err,
			}
			progress.Update(fmt.Sprintf("%d/%d variants done", done.Add(1), len(runners)))
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// AnalyzeComparisonResults sorts the results by success then duration,
// prints a comparison table and checks that all successful results agree
// within tolerance.
//
// Parameters:
//   - results: The results to analyze. The slice is sorted in place and the
//     Deviation fields are filled in.
//   - tolerance: The accepted relative deviation.
//   - out: The io.Writer for the summary report.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeComparisonResults(results []ConvolutionResult, tolerance float64, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var reference []float64
	var firstError error
	successCount := 0
	mismatch := false
	for i := range results {
		res := &results[i]
		if res.Err != nil {
			if firstError == nil {
				firstError = res.Err
			}
			continue
		}
		successCount++
		if reference == nil {
			reference = res.Result
			continue
		}
		if len(res.Result) != len(reference) {
			res.Deviation = math.Inf(1)
			mismatch = true
			continue
		}
		if len(reference) > 0 {
			res.Deviation = floats.Distance(res.Result, reference, math.Inf(1))
		}
		if res.Deviation > tolerance*math.Max(1, maxAbs(reference)) {
			mismatch = true
		}
	}

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sVariant%s\t%sDuration%s\t%sMax deviation%s\t%sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	for _, res := range results {
		var status, deviation string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			deviation = "-"
		} else {
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
			deviation = fmt.Sprintf("%.3g", res.Deviation)
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			ui.ColorYellow(), cli.FormatExecutionDuration(res.Duration), ui.ColorReset(),
			deviation, status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No variant could complete the convolution.\n")
		return apperrors.HandleRunError(firstError, 0, out, cli.CLIColorProvider{})
	}
	if mismatch {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! An inconsistency was detected between the results of the variants.\n")
		return apperrors.ExitErrorMismatch
	}
	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	return apperrors.ExitSuccess
}

// FastestSuccess returns the quickest successful result.
func FastestSuccess(results []ConvolutionResult) (ConvolutionResult, bool) {
	var best ConvolutionResult
	found := false
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if !found || res.Duration < best.Duration {
			best, found = res, true
		}
	}
	return best, found
}

func maxAbs(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
