package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/agbru/kdeconv/internal/calibration"
	"github.com/agbru/kdeconv/internal/cli"
	"github.com/agbru/kdeconv/internal/config"
	"github.com/agbru/kdeconv/internal/cyclic"
	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/filterconv"
	"github.com/agbru/kdeconv/internal/logging"
	"github.com/agbru/kdeconv/internal/orchestration"
	"github.com/agbru/kdeconv/internal/server"
	"github.com/agbru/kdeconv/internal/ui"
)

// Application represents the kdeconv application instance.
// It encapsulates the configuration and runs the selected mode.
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
	// Stdin is read when no input file is configured.
	Stdin io.Reader
	// Logger receives structured application logs.
	Logger *logging.ZerologAdapter

	logCloser io.Closer
}

// New creates a new Application instance by parsing command-line arguments.
//
// When the dispatch thresholds are left at their defaults, a cached
// calibration profile matching the current machine replaces them.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	programName := "kdeconv"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	if cfg.Mode != config.ModeCalibrate && cfg.Thresholds() == filterconv.DefaultThresholds() {
		if withProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
			cfg = withProfile
		}
	}

	a := &Application{
		Config:    cfg,
		ErrWriter: errWriter,
		Stdin:     os.Stdin,
	}
	a.Logger, a.logCloser = newLogger(cfg, errWriter)
	return a, nil
}

// newLogger builds the application logger from the configured level and
// destination.
func newLogger(cfg config.AppConfig, errWriter io.Writer) (*logging.ZerologAdapter, io.Closer) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.LogFile != "" {
		f := logging.NewRotatingFile(cfg.LogFile)
		return logging.NewLogger(f, "kdeconv").WithLevel(level), f
	}
	if cfg.Quiet && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	return logging.NewLogger(errWriter, "kdeconv").WithLevel(level), nil
}

// Close releases the log file, if any.
func (a *Application) Close() error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}

// Run executes the application based on the configured mode.
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}
	if a.Logger == nil {
		a.Logger = logging.NewNopLogger()
	}
	if a.Stdin == nil {
		a.Stdin = os.Stdin
	}

	ui.InitTheme(a.Config.NoColor)
	a.Logger.Debug("starting", logging.String("mode", a.Config.Mode), logging.String("engine", a.Config.Engine))

	if a.Config.Mode != config.ModeServer && a.Config.MetricsAddr != "" {
		stop := a.startMetricsServer(a.Config.MetricsAddr)
		defer stop()
	}

	switch a.Config.Mode {
	case config.ModeServer:
		return a.runServer(ctx)
	case config.ModeCalibrate:
		return a.runCalibration(ctx, out)
	case config.ModeCompare:
		return a.runCompare(ctx, out)
	default:
		return a.runConvolve(ctx, out)
	}
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, cli.DefaultCompletionValues()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// engine returns the configured cyclic convolution engine, or nil for
// "none".
func (a *Application) engine() cyclic.Engine {
	switch a.Config.Engine {
	case config.EngineGonum:
		return cyclic.GonumBased()
	case config.EngineNone:
		return nil
	default:
		return cyclic.FFTBased()
	}
}

// newConvolution builds the dispatch facade with the configured engine and
// thresholds, reporting to the log and to Prometheus.
func (a *Application) newConvolution() (*filterconv.Convolution, error) {
	return filterconv.New(
		filterconv.WithEngine(a.engine()),
		filterconv.WithThresholds(a.Config.Thresholds()),
		filterconv.WithObserver(filterconv.MultiObserver{
			filterconv.NewLoggingObserver(a.Logger.Zerolog()),
			filterconv.NewMetricsObserver(),
		}),
	)
}

// curry fixes the configured filter, wrapping the facade in the
// non-negative variant when requested.
func (a *Application) curry(conv *filterconv.Convolution, filter []float64) (orchestration.Convolver, error) {
	if a.Config.NonNegative {
		nn, err := filterconv.NewNonNegative(conv)
		if err != nil {
			return nil, err
		}
		return nn.Curry(filter)
	}
	return conv.Curry(filter)
}

// prepare reads the signal, builds the filter and curries it.
func (a *Application) prepare() (orchestration.Convolver, *filterconv.Convolution, []float64, int, error) {
	signal, err := cli.ReadSignalFile(a.Config.Input, a.Stdin)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	filter, err := a.Config.BuildFilter()
	if err != nil {
		return nil, nil, nil, 0, err
	}
	conv, err := a.newConvolution()
	if err != nil {
		return nil, nil, nil, 0, err
	}
	p, err := a.curry(conv, filter)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	return p, conv, signal, len(filter), nil
}

// runServer starts the HTTP server mode. It runs until SIGINT or SIGTERM.
func (a *Application) runServer(ctx context.Context) int {
	ctx, stop := SetupSignals(ctx)
	defer stop()

	conv, err := a.newConvolution()
	if err != nil {
		return apperrors.HandleRunError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	srv, err := server.NewServer(conv, a.Config, server.WithLogger(a.Logger))
	if err != nil {
		return apperrors.HandleRunError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runCalibration runs the full calibration mode and saves the profile.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, cancel := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancel.Cleanup()

	return calibration.RunCalibration(ctx, out, a.engine(), calibration.Options{
		ProfilePath: a.Config.CalibrationProfile,
		SaveProfile: true,
		EngineName:  a.Config.Engine,
	})
}

// runAutoCalibrationIfEnabled runs the quick calibration if enabled and the
// thresholds were not set explicitly.
func (a *Application) runAutoCalibrationIfEnabled(ctx context.Context, out io.Writer) {
	if !a.Config.AutoCalibrate || a.Config.Thresholds() != filterconv.DefaultThresholds() {
		return
	}
	if updated, ok := calibration.AutoCalibrate(ctx, a.Config, out, a.engine()); ok {
		a.Config = updated
		a.Logger.Info("thresholds calibrated",
			logging.Int("min_filter_effective", updated.MinFilterEffective),
			logging.Int("min_filter_parallel", updated.MinFilterParallel),
		)
	}
}

// runConvolve convolves the input signal once with the configured strategy.
//
// The result goes to the output file when one is configured and to out
// otherwise. The run summary is printed to out when the result goes to a
// file, and to ErrWriter when out carries the values.
func (a *Application) runConvolve(ctx context.Context, out io.Writer) int {
	start := time.Now()
	ctx, cancel := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancel.Cleanup()

	infoOut := a.infoWriter(out)
	a.runAutoCalibrationIfEnabled(ctx, infoOut)

	conv, facade, signal, filterLen, err := a.prepare()
	if err != nil {
		return apperrors.HandleRunError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}

	runner := orchestration.NewVariant(conv, a.Config.StrategyValue(), a.Config.ParallelValue())
	if !a.Config.Quiet && !a.Config.JSONOutput {
		cli.PrintExecutionConfig(a.Config, filterLen, len(signal), infoOut)
		if !facade.HasEngine() {
			fmt.Fprintf(infoOut, "%sNo cyclic engine: using the direct path only.%s\n", ui.ColorYellow(), ui.ColorReset())
		}
		cli.PrintExecutionMode([]string{runner.Name()}, infoOut)
	}

	results := orchestration.ExecuteConvolutions(ctx, []orchestration.Runner{runner}, signal, infoOut, a.Config.Quiet || a.Config.JSONOutput)
	res := results[0]
	if res.Err != nil {
		return apperrors.HandleRunError(res.Err, time.Since(start), a.ErrWriter, cli.CLIColorProvider{})
	}

	summary := cli.Summary{
		Strategy:  runner.Name(),
		FilterLen: filterLen,
		SignalLen: len(signal),
		Duration:  res.Duration,
	}
	if a.Config.JSONOutput {
		return printJSONResult(res, summary, out)
	}
	if a.Config.Output != "" {
		if err := cli.WriteResultToFile(a.Config.Output, res.Result, summary); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		if !a.Config.Quiet {
			cli.DisplaySummary(out, summary, res.Result)
			cli.DisplaySaved(out, a.Config.Output)
		}
		return apperrors.ExitSuccess
	}
	if err := cli.WriteResult(out, res.Result); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error writing result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if !a.Config.Quiet {
		cli.DisplaySummary(a.ErrWriter, summary, res.Result)
	}
	return apperrors.ExitSuccess
}

// runCompare runs every available variant on the input and checks that
// they agree.
func (a *Application) runCompare(ctx context.Context, out io.Writer) int {
	ctx, cancel := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancel.Cleanup()

	a.runAutoCalibrationIfEnabled(ctx, a.infoWriter(out))

	conv, facade, signal, filterLen, err := a.prepare()
	if err != nil {
		return apperrors.HandleRunError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	runners := orchestration.DefaultVariants(conv, facade.HasEngine())

	if !a.Config.Quiet && !a.Config.JSONOutput {
		cli.PrintExecutionConfig(a.Config, filterLen, len(signal), out)
		cli.PrintExecutionMode(orchestration.Names(runners), out)
	}

	results := orchestration.ExecuteConvolutions(ctx, runners, signal, out, a.Config.Quiet || a.Config.JSONOutput)

	report := out
	if a.Config.JSONOutput {
		report = io.Discard
	}
	exitCode := orchestration.AnalyzeComparisonResults(results, orchestration.DefaultTolerance, report)
	if a.Config.JSONOutput {
		if code := printJSONComparison(results, out); code != apperrors.ExitSuccess {
			return code
		}
	}

	if best, ok := orchestration.FastestSuccess(results); ok && exitCode == apperrors.ExitSuccess && a.Config.Output != "" {
		summary := cli.Summary{Strategy: best.Name, FilterLen: filterLen, SignalLen: len(signal), Duration: best.Duration}
		if err := cli.WriteResultToFile(a.Config.Output, best.Result, summary); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		if !a.Config.Quiet && !a.Config.JSONOutput {
			cli.DisplaySaved(out, a.Config.Output)
		}
	}
	return exitCode
}

// infoWriter returns where informational output goes: ErrWriter when out
// carries values or JSON, out otherwise.
func (a *Application) infoWriter(out io.Writer) io.Writer {
	if a.Config.Quiet {
		return io.Discard
	}
	if a.Config.JSONOutput || (a.Config.Mode == config.ModeConvolve && a.Config.Output == "") {
		return a.ErrWriter
	}
	return out
}

// startMetricsServer exposes the Prometheus registry on addr and returns a
// function shutting it down.
func (a *Application) startMetricsServer(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics server failed", err, logging.String("addr", addr))
		}
	}()
	a.Logger.Info("metrics exposed", logging.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// IsHelpError checks if the error is a help flag error (-help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// jsonResult represents a single convolution in JSON format.
type jsonResult struct {
	Variant   string    `json:"variant"`
	FilterLen int       `json:"filter_len,omitempty"`
	SignalLen int       `json:"signal_len,omitempty"`
	Duration  string    `json:"duration"`
	Deviation *float64  `json:"max_deviation,omitempty"`
	Result    []float64 `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// printJSONResult writes a single convolution as an indented JSON object.
func printJSONResult(res orchestration.ConvolutionResult, s cli.Summary, out io.Writer) int {
	return encodeJSON(out, jsonResult{
		Variant:   res.Name,
		FilterLen: s.FilterLen,
		SignalLen: s.SignalLen,
		Duration:  res.Duration.String(),
		Result:    res.Result,
	})
}

// printJSONComparison writes the comparison outcome as a JSON array. The
// values themselves are omitted.
func printJSONComparison(results []orchestration.ConvolutionResult, out io.Writer) int {
	output := make([]jsonResult, len(results))
	for i, res := range results {
		jr := jsonResult{Variant: res.Name, Duration: res.Duration.String()}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else if !math.IsInf(res.Deviation, 0) {
			d := res.Deviation
			jr.Deviation = &d
		}
		output[i] = jr
	}
	return encodeJSON(out, output)
}

func encodeJSON(out io.Writer, v any) int {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
