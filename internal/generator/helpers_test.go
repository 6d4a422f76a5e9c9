package generator_test

import (
	"context"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/scaffold/internal/environment"
	"github.com/opmodel/scaffold/internal/generator"
	"github.com/opmodel/scaffold/internal/install"
	"github.com/opmodel/scaffold/internal/prompt"
)

const (
	testCwd          = "/work"
	testGlobalConfig = "/home/user/.scaffold/answers.json"
)

// recorder collects task names in execution order.
type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *recorder) task(name string) generator.TaskFunc {
	return func(context.Context) error {
		r.add(name)
		return nil
	}
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

type nopRunner struct{}

func (nopRunner) Spawn(context.Context, string, []string, install.SpawnOptions) (install.Process, error) {
	done := make(chan install.Result, 1)
	done <- install.Result{}
	return nopProcess(done), nil
}

type nopProcess chan install.Result

func (p nopProcess) Done() <-chan install.Result { return p }

type envOption func(*environment.Options)

func withAnswers(a prompt.Answers) envOption {
	return func(o *environment.Options) { o.Adapter = prompt.NewStaticAdapter(a) }
}

func withFs(fs afero.Fs) envOption {
	return func(o *environment.Options) { o.Fs = fs }
}

func withVersion(v string) envOption {
	return func(o *environment.Options) { o.Version = v }
}

func newEnv(t *testing.T, opts ...envOption) *environment.Environment {
	t.Helper()
	o := environment.Options{
		Cwd:              testCwd,
		Fs:               afero.NewMemMapFs(),
		Adapter:          prompt.NewStaticAdapter(nil),
		Runner:           nopRunner{},
		Reporter:         func(string, string) {},
		GlobalConfigPath: testGlobalConfig,
		Version:          "1.4.0",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return environment.New(o)
}

// newBase builds a standalone generator on env.
func newBase(t *testing.T, env generator.Env, namespace string, features generator.Features) *generator.Base {
	t.Helper()
	b, err := generator.New(generator.Options{Env: env, Namespace: namespace}, features)
	require.NoError(t, err)
	return b
}

// factory adapts a setup function into a Factory.
func factory(features generator.Features, setup func(b *generator.Base)) generator.Factory {
	return func(opts generator.Options) (generator.Generator, error) {
		b, err := generator.New(opts, features)
		if err != nil {
			return nil, err
		}
		setup(b)
		return b, nil
	}
}

func specNames(specs []generator.TaskSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
