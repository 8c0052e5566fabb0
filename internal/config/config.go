// Package config provides the configuration management for the kdeconv
// application. It defines the configuration structure, parses command-line
// flags, layers environment variables and an optional YAML file underneath
// them, and validates the result.
//
// Priority, highest first: CLI flags, KDECONV_* environment variables, the
// YAML file named by -config, built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/filterconv"
	"github.com/agbru/kdeconv/internal/kernel"
	"github.com/agbru/kdeconv/internal/logging"
)

const (
	// EnvPrefix is the prefix for all environment variables used by kdeconv.
	EnvPrefix = "KDECONV_"
)

// Application modes.
const (
	ModeConvolve  = "convolve"
	ModeCompare   = "compare"
	ModeCalibrate = "calibrate"
	ModeServer    = "server"
)

// Cyclic engine names.
const (
	EngineFFT   = "fft"
	EngineGonum = "gonum"
	EngineNone  = "none"
)

// Default configuration values.
const (
	// DefaultScale is the default Gaussian resolution scale (mesh step / bandwidth).
	DefaultScale = 0.25
	// DefaultMode is the default application mode.
	DefaultMode = ModeConvolve
	// DefaultEngine is the default cyclic convolution engine.
	DefaultEngine = EngineFFT
	// DefaultTimeout is the default run timeout.
	DefaultTimeout = 2 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// ConfigFile is the optional YAML file layered under flags and environment.
	ConfigFile string
	// Input is the signal file, one number per line or comma separated.
	// Empty or "-" reads standard input.
	Input string
	// Output is the result file. Empty writes to standard output.
	Output string
	// Filter is an explicit comma-separated one-sided filter. When empty a
	// Gaussian filter is built from Scale.
	Filter string
	// Scale is the Gaussian resolution scale (mesh step / bandwidth).
	Scale float64
	// Mode selects convolve, compare, calibrate or server.
	Mode string
	// Strategy forces the convolution algorithm: auto, effective or direct.
	Strategy string
	// Parallel forces the parallelism: auto, on or off.
	Parallel string
	// Engine selects the cyclic convolution engine: fft, gonum or none.
	Engine string
	// NonNegative enables input checks and output clamping for weights.
	NonNegative bool

	// MinFilterEffective and the following fields override the dispatch thresholds.
	MinFilterEffective  int
	MinProductEffective int64
	MinFilterParallel   int
	MinProductParallel  int64
	MinSplit            int

	// CalibrationProfile is the path of the calibration profile to load or
	// save. Empty uses the default path.
	CalibrationProfile string
	// Port specifies the port to listen on in server mode.
	Port string
	// MetricsAddr, when set, exposes Prometheus metrics on this address in
	// non-server modes.
	MetricsAddr string
	// LogLevel is the minimum level written by the logger.
	LogLevel string
	// LogFile, when set, sends log entries to this file with size-based
	// rotation instead of standard error.
	LogFile string
	// Quiet suppresses spinners and informational output.
	Quiet bool
	// NoColor disables colored output. NO_COLOR is also honored.
	NoColor bool
	// JSONOutput prints results and comparison reports as JSON.
	JSONOutput bool
	// AutoCalibrate runs the quick calibration before convolving when no
	// cached profile exists.
	AutoCalibrate bool
	// Completion, when set, prints a shell completion script and exits.
	Completion string
	// Timeout bounds the whole run.
	Timeout time.Duration
}

// Thresholds converts the threshold fields into dispatch thresholds.
func (c AppConfig) Thresholds() filterconv.Thresholds {
	return filterconv.Thresholds{
		MinFilterForEffective:  c.MinFilterEffective,
		MinProductForEffective: c.MinProductEffective,
		MinFilterForParallel:   c.MinFilterParallel,
		MinProductForParallel:  c.MinProductParallel,
		MinSplitSize:           c.MinSplit,
	}
}

// StrategyValue returns the parsed Strategy field.
func (c AppConfig) StrategyValue() filterconv.Strategy {
	s, _ := filterconv.ParseStrategy(c.Strategy)
	return s
}

// ParallelValue returns the parsed Parallel field.
func (c AppConfig) ParallelValue() filterconv.ParallelMode {
	m, _ := filterconv.ParseParallelMode(c.Parallel)
	return m
}

// BuildFilter returns the explicit filter if one is configured, or the
// Gaussian filter for Scale otherwise.
func (c AppConfig) BuildFilter() ([]float64, error) {
	if strings.TrimSpace(c.Filter) == "" {
		return kernel.Gaussian(c.Scale)
	}
	return ParseFloatList(c.Filter)
}

// ParseFloatList parses numbers separated by commas, whitespace or newlines.
func ParseFloatList(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, apperrors.NewValidationError("value", fmt.Sprintf("not a number: %q", f), f)
		}
		out = append(out, v)
	}
	return out, nil
}

// formatFloatList is the inverse of ParseFloatList.
func formatFloatList(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Validate checks the semantic consistency of the configuration parameters.
//
// Returns:
//   - error: An error of type ConfigError if the configuration is invalid,
//     nil otherwise.
func (c AppConfig) Validate() error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	switch c.Mode {
	case ModeConvolve, ModeCompare, ModeCalibrate, ModeServer:
	default:
		return apperrors.NewConfigError("unrecognized mode: '%s'. Valid modes are: %s, %s, %s, %s",
			c.Mode, ModeConvolve, ModeCompare, ModeCalibrate, ModeServer)
	}
	switch c.Engine {
	case EngineFFT, EngineGonum, EngineNone:
	default:
		return apperrors.NewConfigError("unrecognized engine: '%s'. Valid engines are: %s, %s, %s",
			c.Engine, EngineFFT, EngineGonum, EngineNone)
	}
	strategy, err := filterconv.ParseStrategy(c.Strategy)
	if err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if strategy == filterconv.StrategyEffective && c.Engine == EngineNone {
		return apperrors.NewConfigError("strategy 'effective' requires an engine")
	}
	if _, err := filterconv.ParseParallelMode(c.Parallel); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if strings.TrimSpace(c.Filter) == "" && !(c.Scale >= kernel.MinResolutionScale) {
		return apperrors.NewConfigError("scale must be at least %g, got %g", kernel.MinResolutionScale, c.Scale)
	}
	if err := c.Thresholds().Validate(); err != nil {
		return apperrors.NewConfigError("invalid thresholds: %v", err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("invalid log level '%s'", c.LogLevel)
	}
	return nil
}

// ParseConfig parses the command-line arguments into an AppConfig, layers
// the YAML file and the environment underneath explicit flags, and validates
// the result.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage information are printed.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: flag.ErrHelp, a flag parsing error, or a ConfigError.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	th := filterconv.DefaultThresholds()
	config := AppConfig{}
	fs.StringVar(&config.ConfigFile, "config", "", "Path to a YAML configuration file.")
	fs.StringVar(&config.Input, "input", "", "Signal file (one value per line or comma separated); '-' or empty reads stdin.")
	fs.StringVar(&config.Input, "i", "", "Signal file (shorthand).")
	fs.StringVar(&config.Output, "output", "", "Output file path for the result.")
	fs.StringVar(&config.Output, "o", "", "Output file path (shorthand).")
	fs.StringVar(&config.Filter, "filter", "", "Explicit one-sided filter, comma separated (default: Gaussian from -scale).")
	fs.Float64Var(&config.Scale, "scale", DefaultScale, "Gaussian resolution scale (mesh step / bandwidth), at least 0.01.")
	fs.StringVar(&config.Mode, "mode", DefaultMode, "Mode: convolve, compare, calibrate or server.")
	fs.StringVar(&config.Strategy, "strategy", "auto", "Convolution strategy: auto, effective or direct.")
	fs.StringVar(&config.Parallel, "parallel", "auto", "Parallelism: auto, on or off.")
	fs.StringVar(&config.Engine, "engine", DefaultEngine, "Cyclic convolution engine: fft, gonum or none.")
	fs.BoolVar(&config.NonNegative, "nonnegative", false, "Reject negative inputs and clamp round-off artifacts in the output.")
	fs.IntVar(&config.MinFilterEffective, "min-filter-effective", th.MinFilterForEffective, "Smallest filter length for the transform path.")
	fs.Int64Var(&config.MinProductEffective, "min-product-effective", th.MinProductForEffective, "Smallest filter*signal length for the transform path.")
	fs.IntVar(&config.MinFilterParallel, "min-filter-parallel", th.MinFilterForParallel, "Smallest filter length for automatic parallelism.")
	fs.Int64Var(&config.MinProductParallel, "min-product-parallel", th.MinProductForParallel, "Smallest filter*signal length for automatic parallelism.")
	fs.IntVar(&config.MinSplit, "min-split", th.MinSplitSize, "Smallest index range split by the parallel direct path.")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Path to calibration profile file (default: ~/.kdeconv_calibration.json).")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Address exposing Prometheus metrics outside server mode (e.g. :9100).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error or disabled.")
	fs.StringVar(&config.LogFile, "log-file", "", "Write logs to this file, rotated by size, instead of stderr.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.AutoCalibrate, "auto-calibrate", false, "Run a quick calibration at startup when no profile is cached.")
	fs.StringVar(&config.Completion, "completion", "", "Print a completion script for the given shell (bash, zsh, fish).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	if !isFlagSet(fs, "config") {
		config.ConfigFile = getEnvString("CONFIG", config.ConfigFile)
	}
	if config.ConfigFile != "" {
		fc, err := LoadFile(config.ConfigFile)
		if err != nil {
			fmt.Fprintln(errorWriter, "Configuration error:", err)
			return AppConfig{}, err
		}
		fc.applyTo(&config, fs)
	}
	applyEnvOverrides(&config, fs)

	config.Mode = strings.ToLower(strings.TrimSpace(config.Mode))
	config.Engine = strings.ToLower(strings.TrimSpace(config.Engine))
	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, err
	}
	return config, nil
}

// IsHelp reports whether err is the flag package's help request.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [options]\n\n", fs.Name())
		fmt.Fprintln(out, "Convolves a signal with a symmetric smoothing filter, as used by kernel density estimation.")
		fmt.Fprintln(out, "\nOptions:")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nEvery option can also be set through %s<OPTION> environment variables\n", EnvPrefix)
		fmt.Fprintln(out, "(dashes become underscores) or a YAML file passed with -config.")
	}
}
