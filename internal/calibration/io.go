package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/kdeconv/internal/cli"
	"github.com/agbru/kdeconv/internal/ui"
)

// printCalibrationResults formats and prints the measurement table.
func printCalibrationResults(out io.Writer, ms []Measurement) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %sFilter\tSignal\tStrategy\tMode\tSplit\tMean\tCV%s\n", ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s\n", strings.Repeat("─", 62))
	for _, m := range ms {
		mode := "sequential"
		if m.Parallel {
			mode = "parallel"
		}
		split := "-"
		if m.MinSplit > 0 {
			split = fmt.Sprintf("%d", m.MinSplit)
		}
		mean := fmt.Sprintf("%sN/A%s", ui.ColorRed(), ui.ColorReset())
		cv := "-"
		if m.Err == nil {
			mean = cli.FormatSeconds(m.Mean)
			cv = fmt.Sprintf("%.0f%%", m.Variation()*100)
		}
		fmt.Fprintf(tw, "  %s%d\t%d\t%s\t%s\t%s%s\t%s%s%s\t%s\n",
			ui.ColorCyan(), m.FilterLen, m.SignalLen, m.Strategy, mode, split, ui.ColorReset(),
			ui.ColorYellow(), mean, ui.ColorReset(), cv)
	}
	tw.Flush()
}

// printRecommendation prints the derived thresholds as command-line flags.
func printRecommendation(out io.Writer, res Results) {
	t := res.Thresholds
	fmt.Fprintf(out, "\n%s✅ Recommendation for this machine%s (confidence %.0f%%):\n", ui.ColorGreen(), ui.ColorReset(), res.Confidence*100)
	fmt.Fprintf(out, "  %s-min-filter-effective %d -min-product-effective %d -min-filter-parallel %d -min-product-parallel %d -min-split %d%s\n",
		ui.ColorYellow(),
		t.MinFilterForEffective, t.MinProductForEffective,
		t.MinFilterForParallel, t.MinProductForParallel,
		t.MinSplitSize,
		ui.ColorReset())
}
