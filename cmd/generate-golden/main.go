package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agbru/kdeconv/internal/testutil"
)

// GoldenCase represents a single test case in the golden file.
type GoldenCase struct {
	Name     string    `json:"name"`
	Filter   []float64 `json:"filter"`
	Signal   []float64 `json:"signal"`
	Expected []float64 `json:"expected"`
}

func main() {
	outputDir := flag.String("out", "internal/filterconv/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "filterconv_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// Dyadic values only, so the expected sums are exact in float64.
	cases := []GoldenCase{
		{Name: "concrete", Filter: []float64{1, 0.5, 0.25, 0.125}, Signal: []float64{1, 2, 3, 4, 5}},
		{Name: "single-sample", Filter: []float64{0.5, 0.25}, Signal: []float64{4}},
		{Name: "impulse", Filter: []float64{0.5, 0.25, 0.125}, Signal: []float64{0, 0, 1, 0, 0}},
		{Name: "two-tap-ramp", Filter: []float64{0.5, 0.25}, Signal: []float64{1, 2, 3, 4, 5, 6, 7, 8}},
		{Name: "filter-longer-than-signal", Filter: []float64{1, 0.5, 0.25, 0.125, 0.0625}, Signal: []float64{2, 4}},
		{Name: "box", Filter: []float64{1, 1, 1}, Signal: []float64{1, 0, 0, 0, 0, 0, 1}},
		{Name: "alternating-signs", Filter: []float64{0.25, 0.5}, Signal: []float64{1, -1, 1, -1}},
	}

	fmt.Println("Generating golden data...")
	for i := range cases {
		cases[i].Expected = testutil.NaiveFilter(cases[i].Filter, cases[i].Signal)
		fmt.Printf("Generated %s\n", cases[i].Name)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cases); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated golden file at %s\n", filename)
}
