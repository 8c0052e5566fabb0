package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as int, or the default value if not set
// or invalid.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvInt64 is getEnvInt for 64-bit values.
func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvFloat64 returns the variable parsed as float64, or the default value
// if not set or invalid.
func getEnvFloat64(key string, defaultVal float64) float64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as bool, or the default value if not set.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as time.Duration, or the default value if not
// set or invalid. Accepts formats like "5m", "30s", "1h30m".
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// anyFlagSet reports whether any of the aliases was set on the command line.
func anyFlagSet(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
//
// Supported environment variables:
//   - KDECONV_INPUT, KDECONV_OUTPUT: signal and result files (string)
//   - KDECONV_FILTER: explicit comma-separated filter (string)
//   - KDECONV_SCALE: Gaussian resolution scale (float)
//   - KDECONV_MODE: convolve, compare, calibrate or server (string)
//   - KDECONV_STRATEGY, KDECONV_PARALLEL, KDECONV_ENGINE (string)
//   - KDECONV_NONNEGATIVE: weight convolution (bool)
//   - KDECONV_MIN_FILTER_EFFECTIVE, KDECONV_MIN_PRODUCT_EFFECTIVE (int)
//   - KDECONV_MIN_FILTER_PARALLEL, KDECONV_MIN_PRODUCT_PARALLEL (int)
//   - KDECONV_MIN_SPLIT (int)
//   - KDECONV_CALIBRATION_PROFILE, KDECONV_PORT, KDECONV_METRICS_ADDR (string)
//   - KDECONV_LOG_LEVEL, KDECONV_LOG_FILE (string)
//   - KDECONV_QUIET, KDECONV_NO_COLOR, KDECONV_JSON, KDECONV_AUTO_CALIBRATE (bool)
//   - KDECONV_TIMEOUT (duration: "5m", "30s")
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyDurationOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "scale") {
		config.Scale = getEnvFloat64("SCALE", config.Scale)
	}
	if !isFlagSet(fs, "min-filter-effective") {
		config.MinFilterEffective = getEnvInt("MIN_FILTER_EFFECTIVE", config.MinFilterEffective)
	}
	if !isFlagSet(fs, "min-product-effective") {
		config.MinProductEffective = getEnvInt64("MIN_PRODUCT_EFFECTIVE", config.MinProductEffective)
	}
	if !isFlagSet(fs, "min-filter-parallel") {
		config.MinFilterParallel = getEnvInt("MIN_FILTER_PARALLEL", config.MinFilterParallel)
	}
	if !isFlagSet(fs, "min-product-parallel") {
		config.MinProductParallel = getEnvInt64("MIN_PRODUCT_PARALLEL", config.MinProductParallel)
	}
	if !isFlagSet(fs, "min-split") {
		config.MinSplit = getEnvInt("MIN_SPLIT", config.MinSplit)
	}
}

func applyDurationOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !anyFlagSet(fs, "input", "i") {
		config.Input = getEnvString("INPUT", config.Input)
	}
	if !anyFlagSet(fs, "output", "o") {
		config.Output = getEnvString("OUTPUT", config.Output)
	}
	if !isFlagSet(fs, "filter") {
		config.Filter = getEnvString("FILTER", config.Filter)
	}
	if !isFlagSet(fs, "mode") {
		config.Mode = getEnvString("MODE", config.Mode)
	}
	if !isFlagSet(fs, "strategy") {
		config.Strategy = getEnvString("STRATEGY", config.Strategy)
	}
	if !isFlagSet(fs, "parallel") {
		config.Parallel = getEnvString("PARALLEL", config.Parallel)
	}
	if !isFlagSet(fs, "engine") {
		config.Engine = getEnvString("ENGINE", config.Engine)
	}
	if !isFlagSet(fs, "calibration-profile") {
		config.CalibrationProfile = getEnvString("CALIBRATION_PROFILE", config.CalibrationProfile)
	}
	if !isFlagSet(fs, "port") {
		config.Port = getEnvString("PORT", config.Port)
	}
	if !isFlagSet(fs, "metrics-addr") {
		config.MetricsAddr = getEnvString("METRICS_ADDR", config.MetricsAddr)
	}
	if !isFlagSet(fs, "log-level") {
		config.LogLevel = getEnvString("LOG_LEVEL", config.LogLevel)
	}
	if !isFlagSet(fs, "log-file") {
		config.LogFile = getEnvString("LOG_FILE", config.LogFile)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "nonnegative") {
		config.NonNegative = getEnvBool("NONNEGATIVE", config.NonNegative)
	}
	if !anyFlagSet(fs, "quiet", "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !isFlagSet(fs, "auto-calibrate") {
		config.AutoCalibrate = getEnvBool("AUTO_CALIBRATE", config.AutoCalibrate)
	}
}
