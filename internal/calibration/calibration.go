package calibration

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/agbru/kdeconv/internal/config"
	"github.com/agbru/kdeconv/internal/cyclic"
	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/filterconv"
	"github.com/agbru/kdeconv/internal/ui"
)

// Options configures the calibration process.
type Options struct {
	// ProfilePath is the path to save/load the calibration profile.
	// If empty, uses the default path.
	ProfilePath string
	// SaveProfile indicates whether to save the calibration results.
	SaveProfile bool
	// LoadProfile indicates whether to try loading an existing profile.
	LoadProfile bool
	// EngineName is recorded in the profile.
	EngineName string
}

// RunCalibration executes the full benchmark suite, prints a summary table
// and the recommended thresholds, and optionally saves them as a profile.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - out: The io.Writer to which progress and results will be written.
//   - engine: The cyclic engine backing the transform-based path. Nil
//     calibrates only the parallelism thresholds.
//   - opts: Profile handling options.
//
// Returns:
//   - int: The exit code (0 for success, non-zero for errors).
func RunCalibration(ctx context.Context, out io.Writer, engine cyclic.Engine, opts Options) int {
	return runWith(ctx, out, NewFullBenchmark(engine), opts)
}

func runWith(ctx context.Context, out io.Writer, mb *MicroBenchmark, opts Options) int {
	fmt.Fprintf(out, "--- Calibration Mode: Finding the Dispatch Thresholds ---\n")

	if opts.LoadProfile {
		if profile, loaded := LoadOrCreateProfile(opts.ProfilePath); loaded {
			fmt.Fprintf(out, "%sLoaded existing calibration profile%s\n", ui.ColorGreen(), ui.ColorReset())
			fmt.Fprintf(out, "Profile: %s\n", profile.String())
			return apperrors.ExitSuccess
		}
	}

	fmt.Fprintf(out, "%sMeasuring on %d CPU cores%s\n", ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset())
	start := time.Now()
	res, err := mb.Run(ctx)
	if err != nil {
		fmt.Fprintf(out, "\n%sCalibration interrupted.%s\n", ui.ColorYellow(), ui.ColorReset())
		return apperrors.HandleRunError(err, time.Since(start), out, ui.CLIColorProvider{})
	}
	if len(res.Measurements) == 0 {
		fmt.Fprintf(out, "\n%sCalibration failed: no valid results obtained.%s\n", ui.ColorRed(), ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	printCalibrationResults(out, res.Measurements)
	printRecommendation(out, res)

	if opts.SaveProfile {
		profile := NewProfile()
		profile.SetThresholds(res.Thresholds)
		profile.Engine = opts.EngineName
		profile.Confidence = res.Confidence
		profile.CalibrationTime = res.Duration.String()
		if err := profile.SaveProfile(opts.ProfilePath); err != nil {
			fmt.Fprintf(out, "%sWarning: failed to save profile: %v%s\n", ui.ColorYellow(), err, ui.ColorReset())
		} else {
			fmt.Fprintf(out, "%sCalibration profile saved to %s%s\n", ui.ColorGreen(), profilePathOrDefault(opts.ProfilePath), ui.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

// AutoCalibrate tunes the thresholds of cfg at startup. A valid cached
// profile wins; otherwise the quick suite runs and its results are kept
// only when their confidence reaches 0.5.
//
// Returns:
//   - config.AppConfig: The configuration with calibrated thresholds.
//   - bool: True if thresholds were replaced.
func AutoCalibrate(ctx context.Context, cfg config.AppConfig, out io.Writer, engine cyclic.Engine) (config.AppConfig, bool) {
	if updated, ok := LoadCachedCalibration(cfg, cfg.CalibrationProfile); ok {
		fmt.Fprintf(out, "%sUsing cached calibration%s\n", ui.ColorGreen(), ui.ColorReset())
		return updated, true
	}

	res, err := QuickCalibrate(ctx, engine)
	if err != nil || res.Confidence < 0.5 {
		return cfg, false
	}
	updated := ApplyThresholds(cfg, res.Thresholds)
	fmt.Fprintf(out, "%sQuick calibration%s (%v, confidence %.0f%%)\n",
		ui.ColorGreen(), ui.ColorReset(), res.Duration.Round(time.Millisecond), res.Confidence*100)

	profile := NewProfile()
	profile.SetThresholds(res.Thresholds)
	profile.Engine = cfg.Engine
	profile.Confidence = res.Confidence
	profile.CalibrationTime = res.Duration.String()
	if err := profile.SaveProfile(cfg.CalibrationProfile); err != nil {
		fmt.Fprintf(out, "%sWarning: could not save calibration profile: %v%s\n", ui.ColorYellow(), err, ui.ColorReset())
	}
	return updated, true
}

// LoadCachedCalibration applies a cached profile to cfg. It returns false
// when no profile matching the current hardware exists.
func LoadCachedCalibration(cfg config.AppConfig, profilePath string) (config.AppConfig, bool) {
	profile, loaded := LoadOrCreateProfile(profilePath)
	if !loaded {
		return cfg, false
	}
	return ApplyThresholds(cfg, profile.Thresholds()), true
}

// ApplyThresholds returns cfg with its threshold fields replaced by t.
func ApplyThresholds(cfg config.AppConfig, t filterconv.Thresholds) config.AppConfig {
	cfg.MinFilterEffective = t.MinFilterForEffective
	cfg.MinProductEffective = t.MinProductForEffective
	cfg.MinFilterParallel = t.MinFilterForParallel
	cfg.MinProductParallel = t.MinProductForParallel
	cfg.MinSplit = t.MinSplitSize
	return cfg
}

func profilePathOrDefault(path string) string {
	if path == "" {
		return GetDefaultProfilePath()
	}
	return path
}
