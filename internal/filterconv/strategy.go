package filterconv

import (
	"fmt"
	"strings"
)

// Strategy selects the algorithm used for a zero-padded filter convolution.
type Strategy int

const (
	// StrategyAuto lets the facade choose from the problem size.
	StrategyAuto Strategy = iota
	// StrategyEffective forces the segmented transform-based path.
	StrategyEffective
	// StrategyDirect forces the O(L·n) direct path.
	StrategyDirect
)

// String returns the lower-case name used in flags, logs and metric labels.
func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyEffective:
		return "effective"
	case StrategyDirect:
		return "direct"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy converts a name produced by Strategy.String back to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return StrategyAuto, nil
	case "effective", "fft", "segmented":
		return StrategyEffective, nil
	case "direct", "naive":
		return StrategyDirect, nil
	}
	return StrategyAuto, fmt.Errorf("unknown strategy %q (valid: auto, effective, direct)", s)
}

// ParallelMode selects whether a convolution may fan out across goroutines.
type ParallelMode int

const (
	// ParallelAuto decides from the problem size.
	ParallelAuto ParallelMode = iota
	// ParallelOn always fans out.
	ParallelOn
	// ParallelOff always runs on the calling goroutine.
	ParallelOff
)

// String returns the lower-case name used in flags.
func (m ParallelMode) String() string {
	switch m {
	case ParallelAuto:
		return "auto"
	case ParallelOn:
		return "on"
	case ParallelOff:
		return "off"
	default:
		return fmt.Sprintf("parallel(%d)", int(m))
	}
}

// ParseParallelMode converts a flag value to a ParallelMode.
func ParseParallelMode(s string) (ParallelMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ParallelAuto, nil
	case "on", "true", "yes":
		return ParallelOn, nil
	case "off", "false", "no":
		return ParallelOff, nil
	}
	return ParallelAuto, fmt.Errorf("unknown parallel mode %q (valid: auto, on, off)", s)
}

// ParallelModeOf maps an explicit boolean choice to a ParallelMode.
func ParallelModeOf(parallel bool) ParallelMode {
	if parallel {
		return ParallelOn
	}
	return ParallelOff
}
