// Package calibration measures the direct and transform-based convolution
// paths on the current machine and derives dispatch thresholds from the
// crossover points. Results are persisted as a JSON profile keyed by a
// hardware fingerprint so later runs can reuse them.
package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sys/cpu"

	"github.com/agbru/kdeconv/internal/filterconv"
)

// Profile stores the results of a calibration run together with the hardware
// context needed to decide whether cached results still apply.
type Profile struct {
	// Hardware identification
	CPUModel    string   `json:"cpu_model"`
	CPUFeatures []string `json:"cpu_features,omitempty"`
	NumCPU      int      `json:"num_cpu"`
	GOARCH      string   `json:"goarch"`
	GOOS        string   `json:"goos"`
	GoVersion   string   `json:"go_version"`
	WordSize    int      `json:"word_size"`

	// Calibrated dispatch thresholds
	MinFilterForEffective  int   `json:"min_filter_for_effective"`
	MinProductForEffective int64 `json:"min_product_for_effective"`
	MinFilterForParallel   int   `json:"min_filter_for_parallel"`
	MinProductForParallel  int64 `json:"min_product_for_parallel"`
	MinSplitSize           int   `json:"min_split_size"`

	// Calibration metadata
	Engine          string    `json:"engine"`
	Confidence      float64   `json:"confidence"`
	CalibratedAt    time.Time `json:"calibrated_at"`
	CalibrationTime string    `json:"calibration_time"`

	ProfileVersion int `json:"profile_version"`
}

const (
	// CurrentProfileVersion is incremented on breaking changes to the format.
	CurrentProfileVersion = 1

	// DefaultProfileFileName is the default name for the calibration profile file.
	DefaultProfileFileName = ".kdeconv_calibration.json"
)

// GetDefaultProfilePath returns the default path for the calibration profile.
// It uses the user's home directory if available, otherwise the current directory.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

// NewProfile creates a Profile holding the current hardware fingerprint and
// the default thresholds.
func NewProfile() *Profile {
	p := &Profile{
		CPUModel:       getCPUModel(),
		CPUFeatures:    cpuFeatures(),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
		CalibratedAt:   time.Now(),
		ProfileVersion: CurrentProfileVersion,
	}
	p.SetThresholds(filterconv.DefaultThresholds())
	return p
}

func getCPUModel() string {
	return fmt.Sprintf("%s-%d-cores", runtime.GOARCH, runtime.NumCPU())
}

// cpuFeatures lists the SIMD extensions that change the relative cost of the
// butterfly loops against the direct multiply-add loop.
func cpuFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasFPHP, "fphp")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return features
}

// Thresholds returns the calibrated values as dispatch thresholds.
func (p *Profile) Thresholds() filterconv.Thresholds {
	return filterconv.Thresholds{
		MinFilterForEffective:  p.MinFilterForEffective,
		MinProductForEffective: p.MinProductForEffective,
		MinFilterForParallel:   p.MinFilterForParallel,
		MinProductForParallel:  p.MinProductForParallel,
		MinSplitSize:           p.MinSplitSize,
	}
}

// SetThresholds stores t in the profile.
func (p *Profile) SetThresholds(t filterconv.Thresholds) {
	p.MinFilterForEffective = t.MinFilterForEffective
	p.MinProductForEffective = t.MinProductForEffective
	p.MinFilterForParallel = t.MinFilterForParallel
	p.MinProductForParallel = t.MinProductForParallel
	p.MinSplitSize = t.MinSplitSize
}

// LoadProfile loads a calibration profile from the specified path.
// Returns nil and an error if the file doesn't exist or can't be parsed.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		path = GetDefaultProfilePath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	return &profile, nil
}

// SaveProfile saves the calibration profile to the specified path.
// If path is empty, uses the default profile path.
func (p *Profile) SaveProfile(path string) error {
	if path == "" {
		path = GetDefaultProfilePath()
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}

// IsValid reports whether the profile was produced by this profile version
// on hardware matching the current machine and holds usable thresholds.
func (p *Profile) IsValid() bool {
	if p == nil {
		return false
	}
	if p.ProfileVersion != CurrentProfileVersion {
		return false
	}
	if p.NumCPU != runtime.NumCPU() || p.GOARCH != runtime.GOARCH {
		return false
	}
	if p.WordSize != 32<<(^uint(0)>>63) {
		return false
	}
	if !slices.Equal(p.CPUFeatures, cpuFeatures()) {
		return false
	}
	return p.Thresholds().Validate() == nil
}

// IsStale checks if the profile is older than the given duration.
func (p *Profile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

// String returns a human-readable summary of the profile.
func (p *Profile) String() string {
	if p == nil {
		return "<nil profile>"
	}
	features := "none"
	if len(p.CPUFeatures) > 0 {
		features = strings.Join(p.CPUFeatures, ",")
	}
	return fmt.Sprintf(
		"Profile{CPU: %s [%s], Effective: L>=%d & L*n>=%d, Parallel: L>=%d & L*n>=%d, Split: %d, Calibrated: %s}",
		p.CPUModel, features,
		p.MinFilterForEffective, p.MinProductForEffective,
		p.MinFilterForParallel, p.MinProductForParallel,
		p.MinSplitSize,
		p.CalibratedAt.Format(time.RFC3339),
	)
}

// LoadOrCreateProfile loads an existing profile or creates a new one if it
// is missing or does not match the current hardware. The boolean reports
// whether the returned profile was loaded.
func LoadOrCreateProfile(path string) (*Profile, bool) {
	profile, err := LoadProfile(path)
	if err != nil || !profile.IsValid() {
		return NewProfile(), false
	}
	return profile, true
}

// ProfileExists checks if a calibration profile exists at the given path.
func ProfileExists(path string) bool {
	if path == "" {
		path = GetDefaultProfilePath()
	}
	_, err := os.Stat(path)
	return err == nil
}
