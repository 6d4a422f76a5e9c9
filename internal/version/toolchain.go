package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// goVersionRegex matches toolchain output like "go version go1.25.3 linux/amd64".
var goVersionRegex = regexp.MustCompile(`go(\d+\.\d+(?:\.\d+)?(?:[a-z]+\d*)?)`)

// ToolchainInfo describes the Go toolchain found on PATH.
type ToolchainInfo struct {
	// Version is the toolchain version in "v1.25.3" form.
	Version string `json:"version"`

	// Path is the path to the go binary.
	Path string `json:"path"`

	// Compatible indicates the toolchain satisfies MinGoVersion.
	Compatible bool `json:"compatible"`

	// Found indicates if the go binary was found.
	Found bool `json:"found"`

	// Message provides additional information about compatibility.
	Message string `json:"message,omitempty"`
}

// DetectToolchain finds and checks the Go toolchain installation.
func DetectToolchain(ctx context.Context) ToolchainInfo {
	path, err := exec.LookPath("go")
	if err != nil {
		return ToolchainInfo{Message: "go binary not found in PATH"}
	}

	v, err := toolchainVersion(ctx, path)
	if err != nil {
		return ToolchainInfo{
			Path:    path,
			Found:   true,
			Message: "failed to get go version: " + err.Error(),
		}
	}

	return ToolchainInfo{
		Version:    v,
		Path:       path,
		Found:      true,
		Compatible: Compatible(v, MinGoVersion),
		Message:    CompatibilityMessage(v, MinGoVersion),
	}
}

func toolchainVersion(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "env", "GOVERSION")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return "", err
	}
	return extractVersion(out.String())
}

// extractVersion extracts the version from "go version" or GOVERSION output.
func extractVersion(output string) (string, error) {
	m := goVersionRegex.FindStringSubmatch(output)
	if m == nil {
		return "", &versionParseError{output: strings.TrimSpace(output)}
	}

	v := m[1]
	// Release candidates like 1.26rc1 are not semver.
	if i := strings.IndexAny(v, "abcdefghijklmnopqrstuvwxyz"); i >= 0 {
		v = v[:i]
	}
	if strings.Count(v, ".") == 1 {
		v += ".0"
	}
	return "v" + v, nil
}

// versionParseError indicates failure to parse toolchain version output.
type versionParseError struct {
	output string
}

func (e *versionParseError) Error() string {
	return fmt.Sprintf("failed to parse go version from output: %q", e.output)
}

// String returns a human-readable toolchain info string.
func (t ToolchainInfo) String() string {
	if !t.Found {
		return "  Toolchain: not found\n  Path:      -"
	}
	return fmt.Sprintf("  Toolchain: %s (%s)\n  Path:      %s", t.Version, t.Message, t.Path)
}

// FullVersionString returns complete version information including the
// Go toolchain.
func FullVersionString(info Info, tc ToolchainInfo) string {
	return info.String() + "\n\nGo toolchain:\n" + tc.String()
}
