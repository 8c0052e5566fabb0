package orchestration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/filterconv"
	"github.com/agbru/kdeconv/internal/testutil"
)

// MockRunner is a Runner used for testing the orchestration logic without
// invoking real convolutions.
type MockRunner struct {
	NameValue string
	RunFunc   func(ctx context.Context, signal []float64) ([]float64, error)
}

func (m *MockRunner) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "Mock"
}

func (m *MockRunner) Run(ctx context.Context, signal []float64) ([]float64, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, signal)
	}
	return append([]float64(nil), signal...), nil
}

func TestExecuteConvolutions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		runners     []Runner
		expectedLen int
		expectError []bool
	}{
		{
			name:        "Single success",
			runners:     []Runner{&MockRunner{}},
			expectedLen: 1,
			expectError: []bool{false},
		},
		{
			name: "Failure does not stop others",
			runners: []Runner{
				&MockRunner{NameValue: "bad", RunFunc: func(context.Context, []float64) ([]float64, error) {
					return nil, errors.New("mock error")
				}},
				&MockRunner{NameValue: "good"},
			},
			expectedLen: 2,
			expectError: []bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results := ExecuteConvolutions(context.Background(), tt.runners, []float64{1, 2}, io.Discard, true)
			if len(results) != tt.expectedLen {
				t.Fatalf("expected %d results, got %d", tt.expectedLen, len(results))
			}
			for i, res := range results {
				if (res.Err != nil) != tt.expectError[i] {
					t.Errorf("result %d (%s): err = %v, expectError %v", i, res.Name, res.Err, tt.expectError[i])
				}
			}
		})
	}
}

func TestAnalyzeComparisonResults(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		results        []ConvolutionResult
		expectedStatus int
	}{
		{
			name: "All success",
			results: []ConvolutionResult{
				{Name: "A", Result: []float64{1, 2}, Duration: time.Millisecond},
				{Name: "B", Result: []float64{1, 2 + 1e-12}, Duration: 2 * time.Millisecond},
			},
			expectedStatus: apperrors.ExitSuccess,
		},
		{
			name: "Mismatch",
			results: []ConvolutionResult{
				{Name: "A", Result: []float64{1, 2}, Duration: time.Millisecond},
				{Name: "B", Result: []float64{1, 2.5}, Duration: time.Millisecond},
			},
			expectedStatus: apperrors.ExitErrorMismatch,
		},
		{
			name: "Length mismatch",
			results: []ConvolutionResult{
				{Name: "A", Result: []float64{1, 2}, Duration: time.Millisecond},
				{Name: "B", Result: []float64{1}, Duration: time.Millisecond},
			},
			expectedStatus: apperrors.ExitErrorMismatch,
		},
		{
			name: "All failure",
			results: []ConvolutionResult{
				{Name: "A", Err: errors.New("fail"), Duration: time.Millisecond},
				{Name: "B", Err: errors.New("fail"), Duration: time.Millisecond},
			},
			expectedStatus: apperrors.ExitErrorGeneric,
		},
		{
			name: "Mixed success/failure",
			results: []ConvolutionResult{
				{Name: "A", Result: []float64{5}, Duration: time.Millisecond},
				{Name: "B", Err: errors.New("fail"), Duration: time.Millisecond},
			},
			expectedStatus: apperrors.ExitSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status := AnalyzeComparisonResults(tt.results, DefaultTolerance, io.Discard)
			if status != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, status)
			}
		})
	}
}

func TestAnalyzeComparisonResultsReport(t *testing.T) {
	t.Parallel()
	results := []ConvolutionResult{
		{Name: "slow", Result: []float64{1, 2}, Duration: 3 * time.Millisecond},
		{Name: "broken", Err: errors.New("boom"), Duration: time.Microsecond},
		{Name: "fast", Result: []float64{1, 2}, Duration: time.Millisecond},
	}
	var buf bytes.Buffer
	AnalyzeComparisonResults(results, DefaultTolerance, &buf)

	if results[0].Name != "fast" || results[2].Name != "broken" {
		t.Errorf("unexpected order: %s, %s, %s", results[0].Name, results[1].Name, results[2].Name)
	}
	out := testutil.StripAnsiCodes(buf.String())
	for _, want := range []string{"Comparison Summary", "Failure (boom)", "All valid results are consistent"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFastestSuccess(t *testing.T) {
	t.Parallel()
	if _, ok := FastestSuccess([]ConvolutionResult{{Err: errors.New("x")}}); ok {
		t.Error("expected no success")
	}
	best, ok := FastestSuccess([]ConvolutionResult{
		{Name: "a", Duration: 2 * time.Second},
		{Name: "b", Duration: time.Second},
		{Name: "c", Duration: time.Millisecond, Err: errors.New("x")},
	})
	if !ok || best.Name != "b" {
		t.Errorf("FastestSuccess() = %q, %v", best.Name, ok)
	}
}

// TestDefaultVariantsAgree runs the real variants end to end.
func TestDefaultVariantsAgree(t *testing.T) {
	t.Parallel()
	conv, err := filterconv.New()
	if err != nil {
		t.Fatal(err)
	}
	filter := []float64{1, 0.5, 0.25, 0.125}
	p, err := conv.Curry(filter)
	if err != nil {
		t.Fatal(err)
	}
	signal := testutil.RandomSignal(testutil.NewRand(7), 3000)
	runners := DefaultVariants(p, conv.HasEngine())
	if len(runners) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(runners))
	}

	results := ExecuteConvolutions(context.Background(), runners, signal, io.Discard, true)
	if code := AnalyzeComparisonResults(results, DefaultTolerance, io.Discard); code != apperrors.ExitSuccess {
		t.Fatalf("variants disagree, exit code %d", code)
	}
	want := testutil.NaiveFilter(filter, signal)
	best, _ := FastestSuccess(results)
	if d, _ := testutil.MaxAbsDiff(best.Result, want); d > 1e-9 {
		t.Errorf("result deviates from the reference by %g", d)
	}
}

func TestVariantNameAndCancel(t *testing.T) {
	t.Parallel()
	v := NewVariant(&MockRunnerConvolver{}, filterconv.StrategyEffective, filterconv.ParallelOn)
	if v.Name() != "effective/parallel" {
		t.Errorf("Name() = %q", v.Name())
	}
	if got := Names(DefaultVariants(&MockRunnerConvolver{}, false)); strings.Join(got, ",") != "direct/sequential,direct/parallel" {
		t.Errorf("Names() = %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := v.Run(ctx, []float64{1}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type MockRunnerConvolver struct{}

func (MockRunnerConvolver) ComputeUsing(signal []float64, _ filterconv.Strategy, _ filterconv.ParallelMode) ([]float64, error) {
	return append([]float64(nil), signal...), nil
}
