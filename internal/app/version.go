// Package app wires the kdeconv command: it parses the configuration,
// builds the convolution stack and runs the selected mode (convolve,
// compare, calibrate or server).
package app

import (
	"fmt"
	"io"
	"runtime"
)

// Build metadata, set with -ldflags, e.g.:
//
//	go build -ldflags="-X github.com/agbru/kdeconv/internal/app.Version=v0.3.0 -X github.com/agbru/kdeconv/internal/app.Commit=abc123" ./cmd/kdeconv
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the short Git commit hash.
	Commit = "unknown"
	// BuildDate is the RFC 3339 build timestamp.
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args request the version, in any
// position, so that "-version" wins over otherwise invalid flags.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--version", "-version", "-V":
			return true
		}
	}
	return false
}

// VersionData is the machine-readable form of the build metadata.
type VersionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns the build metadata and the runtime platform.
func GetVersionInfo() VersionData {
	return VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintVersion writes the build metadata to out.
func PrintVersion(out io.Writer) {
	v := GetVersionInfo()
	fmt.Fprintf(out, "kdeconv %s\n", v.Version)
	fmt.Fprintf(out, "  Commit:     %s\n", v.Commit)
	fmt.Fprintf(out, "  Built:      %s\n", v.BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", v.GoVersion)
	fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", v.OS, v.Arch)
}
