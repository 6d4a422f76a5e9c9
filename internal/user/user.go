// Package user reads the current user's identity from git configuration.
package user

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// CommandFunc runs git with args in dir and returns trimmed stdout.
type CommandFunc func(ctx context.Context, dir string, args ...string) (string, error)

// RunGit executes git in dir.
func RunGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //#nosec G204 -- args are constructed internally
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("git %s failed: %s: %w", args[0], strings.TrimSpace(stderr.String()), err)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Git looks up user.name and user.email, caching each value per directory.
type Git struct {
	dir string
	run CommandFunc

	mu    sync.Mutex
	cache map[string]string
}

// NewGit creates a lookup rooted at dir. A nil run uses RunGit.
func NewGit(dir string, run CommandFunc) *Git {
	if run == nil {
		run = RunGit
	}
	return &Git{dir: dir, run: run, cache: make(map[string]string)}
}

// Name returns git's user.name, or an empty string when unset.
func (g *Git) Name(ctx context.Context) string {
	return g.get(ctx, "user.name")
}

// Email returns git's user.email, or an empty string when unset.
func (g *Git) Email(ctx context.Context) string {
	return g.get(ctx, "user.email")
}

func (g *Git) get(ctx context.Context, key string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if v, ok := g.cache[key]; ok {
		return v
	}

	v, err := g.run(ctx, g.dir, "config", "--get", key)
	if err != nil {
		v = ""
	}
	g.cache[key] = v
	return v
}
