package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/kdeconv/internal/config"
	"github.com/agbru/kdeconv/internal/ui"
)

// PrintExecutionConfig displays the configuration a run will use: input
// sizes, engine, strategy and the dispatch thresholds.
//
// Parameters:
//   - cfg: The application configuration.
//   - filterLen: The length of the one-sided filter.
//   - signalLen: The length of the signal.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, filterLen, signalLen int, out io.Writer) {
	writeOut(out, "--- Execution Configuration ---\n")
	writeOut(out, "Convolving %s%d%s samples with a %s%d%s-tap filter, timeout %s%s%s.\n",
		ui.ColorBlue(), signalLen, ui.ColorReset(),
		ui.ColorBlue(), filterLen, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	writeOut(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	writeOut(out, "Engine: %s%s%s, strategy: %s%s%s, parallel: %s%s%s.\n",
		ui.ColorCyan(), cfg.Engine, ui.ColorReset(),
		ui.ColorCyan(), cfg.StrategyValue(), ui.ColorReset(),
		ui.ColorCyan(), cfg.ParallelValue(), ui.ColorReset())
	t := cfg.Thresholds()
	writeOut(out, "Thresholds: effective L>=%d & L*n>=%d, parallel L>=%d & L*n>=%d, split %d.\n",
		t.MinFilterForEffective, t.MinProductForEffective,
		t.MinFilterForParallel, t.MinProductForParallel, t.MinSplitSize)
}

// PrintExecutionMode displays whether a single convolution or a comparison
// of several variants will run.
func PrintExecutionMode(variants []string, out io.Writer) {
	var modeDesc string
	switch len(variants) {
	case 0:
		modeDesc = "nothing to run"
	case 1:
		modeDesc = fmt.Sprintf("Single convolution (%s%s%s)", ui.ColorGreen(), variants[0], ui.ColorReset())
	default:
		modeDesc = fmt.Sprintf("Parallel comparison of %d variants", len(variants))
	}
	writeOut(out, "Execution mode: %s.\n", modeDesc)
	writeOut(out, "\n--- Starting Execution ---\n")
}

func writeOut(out io.Writer, format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}
