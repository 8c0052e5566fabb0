package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/kdeconv/internal/errors"
)

// FileConfig mirrors AppConfig for YAML files. Pointer fields distinguish an
// absent key from an explicit zero value.
type FileConfig struct {
	Input              *string   `yaml:"input"`
	Output             *string   `yaml:"output"`
	Filter             []float64 `yaml:"filter"`
	Scale              *float64  `yaml:"scale"`
	Mode               *string   `yaml:"mode"`
	Strategy           *string   `yaml:"strategy"`
	Parallel           *string   `yaml:"parallel"`
	Engine             *string   `yaml:"engine"`
	NonNegative        *bool     `yaml:"nonnegative"`
	CalibrationProfile *string   `yaml:"calibration_profile"`
	Port               *string   `yaml:"port"`
	MetricsAddr        *string   `yaml:"metrics_addr"`
	LogLevel           *string   `yaml:"log_level"`
	LogFile            *string   `yaml:"log_file"`
	Quiet              *bool     `yaml:"quiet"`
	NoColor            *bool     `yaml:"no_color"`
	JSONOutput         *bool     `yaml:"json"`
	AutoCalibrate      *bool     `yaml:"auto_calibrate"`
	Timeout            *string   `yaml:"timeout"`

	Thresholds struct {
		MinFilterEffective  *int   `yaml:"min_filter_effective"`
		MinProductEffective *int64 `yaml:"min_product_effective"`
		MinFilterParallel   *int   `yaml:"min_filter_parallel"`
		MinProductParallel  *int64 `yaml:"min_product_parallel"`
		MinSplit            *int   `yaml:"min_split"`
	} `yaml:"thresholds"`

	timeout time.Duration
}

// LoadFile reads and decodes a YAML configuration file. Unknown keys are
// rejected so that typos surface as configuration errors.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("cannot read config file %s: %v", path, err)
	}
	return ParseFile(data)
}

// ParseFile decodes YAML configuration data. An empty document yields an
// empty FileConfig.
func ParseFile(data []byte) (*FileConfig, error) {
	fc := &FileConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.NewConfigError("invalid config file: %v", err)
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return nil, apperrors.NewConfigError("invalid timeout %q in config file", *fc.Timeout)
		}
		fc.timeout = d
	}
	return fc, nil
}

// applyTo copies every present key into config unless the matching flag was
// set on the command line.
func (fc *FileConfig) applyTo(config *AppConfig, fs *flag.FlagSet) {
	setValue(fs, &config.Input, fc.Input, "input", "i")
	setValue(fs, &config.Output, fc.Output, "output", "o")
	setValue(fs, &config.Mode, fc.Mode, "mode")
	setValue(fs, &config.Strategy, fc.Strategy, "strategy")
	setValue(fs, &config.Parallel, fc.Parallel, "parallel")
	setValue(fs, &config.Engine, fc.Engine, "engine")
	setValue(fs, &config.CalibrationProfile, fc.CalibrationProfile, "calibration-profile")
	setValue(fs, &config.Port, fc.Port, "port")
	setValue(fs, &config.MetricsAddr, fc.MetricsAddr, "metrics-addr")
	setValue(fs, &config.LogLevel, fc.LogLevel, "log-level")
	setValue(fs, &config.LogFile, fc.LogFile, "log-file")
	setValue(fs, &config.Scale, fc.Scale, "scale")
	setValue(fs, &config.NonNegative, fc.NonNegative, "nonnegative")
	setValue(fs, &config.Quiet, fc.Quiet, "quiet", "q")
	setValue(fs, &config.NoColor, fc.NoColor, "no-color")
	setValue(fs, &config.JSONOutput, fc.JSONOutput, "json")
	setValue(fs, &config.AutoCalibrate, fc.AutoCalibrate, "auto-calibrate")
	setValue(fs, &config.MinFilterEffective, fc.Thresholds.MinFilterEffective, "min-filter-effective")
	setValue(fs, &config.MinProductEffective, fc.Thresholds.MinProductEffective, "min-product-effective")
	setValue(fs, &config.MinFilterParallel, fc.Thresholds.MinFilterParallel, "min-filter-parallel")
	setValue(fs, &config.MinProductParallel, fc.Thresholds.MinProductParallel, "min-product-parallel")
	setValue(fs, &config.MinSplit, fc.Thresholds.MinSplit, "min-split")
	if fc.Timeout != nil && !isFlagSet(fs, "timeout") {
		config.Timeout = fc.timeout
	}
	if len(fc.Filter) > 0 && !isFlagSet(fs, "filter") {
		config.Filter = formatFloatList(fc.Filter)
	}
}

func setValue[T any](fs *flag.FlagSet, dst, src *T, names ...string) {
	if src == nil || anyFlagSet(fs, names...) {
		return
	}
	*dst = *src
}
