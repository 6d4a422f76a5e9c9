// Package testutil provides test helpers for generator and CLI tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/opmodel/scaffold/internal/install"
)

// RecordingRunner is an install.Runner that records every request and
// finishes it immediately with Result.
type RecordingRunner struct {
	Result install.Result

	mu       sync.Mutex
	requests []install.Request
}

// Spawn implements install.Runner.
func (r *RecordingRunner) Spawn(_ context.Context, name string, args []string, opts install.SpawnOptions) (install.Process, error) {
	r.mu.Lock()
	r.requests = append(r.requests, install.Request{Manager: name, Args: args, Dir: opts.Dir})
	r.mu.Unlock()

	done := make(chan install.Result, 1)
	done <- r.Result
	return process(done), nil
}

// Requests returns the recorded requests in spawn order.
func (r *RecordingRunner) Requests() []install.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]install.Request(nil), r.requests...)
}

type process chan install.Result

func (p process) Done() <-chan install.Result { return p }

// WriteFile creates a file with the given content, creating parent dirs.
func WriteFile(t *testing.T, fs afero.Fs, path, content string) string {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path, failing the test when it is missing.
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(data)
}

// Exists reports whether path exists on fs.
func Exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	return ok
}
