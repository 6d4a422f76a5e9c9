// Package version provides version information for the scaffold CLI.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// MinGoVersion is the oldest Go toolchain the generated projects target.
const MinGoVersion = "v1.22.0"

// Info contains version information.
type Info struct {
	// Version is the CLI version (set via ldflags).
	Version string `json:"version"`

	// GitCommit is the git commit hash.
	GitCommit string `json:"gitCommit"`

	// BuildDate is the build timestamp.
	BuildDate string `json:"buildDate"`

	// GoVersion is the Go version used to build.
	GoVersion string `json:"goVersion"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("scaffold:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion)
}

// Canonical returns v with a "v" prefix in canonical semver form, or an
// empty string when v is not a version.
func Canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// IsDevelopment reports whether v is an unreleased v0.0.0 prerelease,
// the version of any build made without ldflags.
func IsDevelopment(v string) bool {
	c := Canonical(v)
	if c == "" || semver.Prerelease(c) == "" {
		return false
	}
	return strings.TrimSuffix(c, semver.Prerelease(c)) == "v0.0.0"
}

// Compatible reports whether have satisfies the minimum version want.
// Versions are compared as semver; unparsable versions are incompatible.
func Compatible(have, want string) bool {
	h, w := Canonical(have), Canonical(want)
	if h == "" || w == "" {
		return false
	}
	return semver.Compare(h, w) >= 0
}

// CompatibilityMessage explains the result of Compatible.
func CompatibilityMessage(have, want string) string {
	h, w := Canonical(have), Canonical(want)
	switch {
	case h == "" || w == "":
		return "incompatible - invalid version format"
	case semver.Compare(h, w) >= 0:
		return "compatible"
	case semver.Major(h) != semver.Major(w):
		return "incompatible - MAJOR version mismatch"
	default:
		return "incompatible - older than " + semver.MajorMinor(w)
	}
}

// LanguageVersion returns the MAJOR.MINOR form used in go.mod, e.g. "1.25"
// for "go1.25.3".
func LanguageVersion(v string) string {
	mm := semver.MajorMinor(Canonical(strings.TrimPrefix(v, "go")))
	return strings.TrimPrefix(mm, "v")
}
