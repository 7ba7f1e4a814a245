// Package settings holds build metadata and the per-run settings shared by
// the gridkit CLI and the packages it drives.
package settings

import (
	"os"
	"path/filepath"
)

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "gridkit"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the settings for a single execution of the CLI.
type Run struct {
	MinLogLevel int8
	// StateDir is where persisted table configs live.
	StateDir    string
	IsQuiet     bool
	NoColor     bool
	Interactive bool
	ExitOnError bool
}

// NewCliParams returns the defaults used when gridkit runs from the command line.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		StateDir:    DefaultStateDir(),
		ExitOnError: true,
	}
}

// DefaultStateDir resolves $XDG_STATE_HOME/gridkit, falling back to
// ~/.local/state/gridkit and finally a directory under the temp dir.
func DefaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, CliBinaryName)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "state", CliBinaryName)
	}
	return filepath.Join(os.TempDir(), CliBinaryName)
}
