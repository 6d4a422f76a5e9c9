package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/testutil"
)

const answersPath = "/home/user/.scaffold/answers.json"

type harness struct {
	fs     afero.Fs
	runner *testutil.RecordingRunner
	stdout *bytes.Buffer
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		fs:     afero.NewMemMapFs(),
		runner: &testutil.RecordingRunner{},
		stdout: &bytes.Buffer{},
		config: filepath.Join(t.TempDir(), "config.yaml"),
	}
}

func (h *harness) execute(args ...string) error {
	root := NewRootCmdWith(Runtime{
		Fs:               h.fs,
		Runner:           h.runner,
		Stdout:           h.stdout,
		Cwd:              "/work",
		GlobalConfigPath: answersPath,
	})
	root.SetArgs(append([]string{"--config", h.config, "--timestamps=false"}, args...))
	root.SetOut(h.stdout)
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func (h *harness) read(t *testing.T, path string) string {
	t.Helper()
	return testutil.ReadFile(t, h.fs, path)
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "list", "config", "version"})
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)
}

func TestRun_App(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.fs, "/work/answers.yaml", "name: hello\nlicense: MIT\n")

	err := h.execute("run", "app", "--dir", "hello", "--answers", "/work/answers.yaml",
		"--option", "go-version=1.25", "--option", "author=Ada", "--option", "email=ada@example.com",
		"--summary")
	require.NoError(t, err)

	summary := h.stdout.String()
	assert.Contains(t, summary, "hello/")
	assert.Contains(t, summary, "go.mod")
	assert.Contains(t, summary, "create")

	assert.Equal(t, "module example.com/hello\n\ngo 1.25\n", h.read(t, "/work/hello/go.mod"))
	assert.Contains(t, h.read(t, "/work/hello/LICENSE"), "MIT License")
	assert.Contains(t, h.read(t, "/work/hello/.scaffold-rc.json"), `"module": "example.com/hello"`)

	requests := h.runner.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "go mod tidy", requests[0].String())
}

func TestRun_SkipInstall(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.fs, "/work/answers.yaml", "name: quiet\nlicense: none\n")

	err := h.execute("run", "app", "--skip-install", "--skip-cache", "--answers", "/work/answers.yaml",
		"--option", "go-version=1.25")
	require.NoError(t, err)

	assert.Empty(t, h.runner.Requests())
	assert.False(t, testutil.Exists(t, h.fs, answersPath), "answers are not remembered with --skip-cache")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{
			name: "unknown generator",
			args: []string{"run", "missing"},
			code: oerrors.ExitNotFound,
		},
		{
			name: "malformed option",
			args: []string{"run", "gitignore", "--option", "novalue"},
			code: oerrors.ExitValidationError,
		},
		{
			name: "missing answers file",
			args: []string{"run", "gitignore", "--answers", "/work/nope.yaml"},
			code: oerrors.ExitNotFound,
		},
		{
			name: "unsupported license",
			args: []string{"run", "license", "--option", "license=GPL", "--option", "author=x", "--option", "email=y"},
			code: oerrors.ExitValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newHarness(t).execute(tt.args...)
			require.Error(t, err)

			var exitErr *oerrors.ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, tt.code, exitErr.Code)
			assert.True(t, exitErr.Printed)
		})
	}
}

func TestList(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.execute("list"))

	out := h.stdout.String()
	assert.Contains(t, out, "NAMESPACE")
	assert.Contains(t, out, "app")
	assert.Contains(t, out, "license")
	assert.Contains(t, out, "gitignore")
	assert.Contains(t, out, "namespace", "gitignore is unique per namespace")
}

func TestConfig_SetGetUnset(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.execute("config", "set", "-n", "app", "name", "demo"))
	require.NoError(t, h.execute("config", "set", "-n", "app", "flags.verbose", "true"))
	assert.JSONEq(t, `{"app": {"name": "demo", "flags": {"verbose": true}}}`,
		h.read(t, "/work/.scaffold-rc.json"))

	h.stdout.Reset()
	require.NoError(t, h.execute("config", "get", "-n", "app", "flags.verbose"))
	assert.Equal(t, "true\n", h.stdout.String())

	h.stdout.Reset()
	require.NoError(t, h.execute("config", "get", "-n", "app", "-o", "yaml"))
	assert.Equal(t, "flags:\n  verbose: true\nname: demo\n", h.stdout.String())

	require.NoError(t, h.execute("config", "unset", "-n", "app", "flags"))
	assert.JSONEq(t, `{"app": {"name": "demo"}}`, h.read(t, "/work/.scaffold-rc.json"))

	err := h.execute("config", "get", "-n", "app", "flags")
	assert.Equal(t, oerrors.ExitNotFound, oerrors.ExitCodeFromError(err))
}

func TestConfig_Global(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.execute("config", "set", "--global", "-n", "app", "promptValues.license", "ISC"))
	assert.JSONEq(t, `{"app": {"promptValues": {"license": "ISC"}}}`, h.read(t, answersPath))

	assert.False(t, testutil.Exists(t, h.fs, "/work/.scaffold-rc.json"))
}

func TestConfig_Show(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.execute("config", "show", "-o", "json"))
	assert.Contains(t, h.stdout.String(), `"answersFile"`)

	err := h.execute("config", "show", "-o", "toml")
	assert.Equal(t, oerrors.ExitValidationError, oerrors.ExitCodeFromError(err))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"true", true},
		{"3", 3},
		{"hello", "hello"},
		{"", ""},
		{"null", nil},
		{"[a, b]", []any{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseValue(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeneratorFlags_ParseOptions(t *testing.T) {
	f := GeneratorFlags{Options: []string{"license=MIT", "author=Jane Doe", "empty="}}
	got, err := f.ParseOptions()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"license": "MIT", "author": "Jane Doe", "empty": ""}, got)

	f = GeneratorFlags{Options: []string{"=x"}}
	_, err = f.ParseOptions()
	assert.ErrorIs(t, err, oerrors.ErrValidation)
}
