package generator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/generator"
	"github.com/opmodel/scaffold/internal/priority"
)

func noop(context.Context) error { return nil }

func TestClassifyTasks(t *testing.T) {
	tests := []struct {
		name      string
		features  generator.Features
		define    func(b *generator.Base)
		wantNames []string
		wantPrio  []string
	}{
		{
			name: "priority names and default",
			define: func(b *generator.Base) {
				b.Define("writing", noop)
				b.Define("scaffold", noop)
				b.Define("initializing", noop)
			},
			wantNames: []string{"writing", "scaffold", "initializing"},
			wantPrio:  []string{priority.Writing, priority.Default, priority.Initializing},
		},
		{
			name: "private and reserved names are skipped",
			define: func(b *generator.Base) {
				b.Define("_helper", noop)
				b.Define("constructor", noop)
				b.Define("config", noop)
				b.Define("end", noop)
			},
			wantNames: []string{"end"},
			wantPrio:  []string{priority.End},
		},
		{
			name:     "tasks matching priority drops unmatched names",
			features: generator.Features{TasksMatchingPriority: true},
			define: func(b *generator.Base) {
				b.Define("scaffold", noop)
				b.Define("prompting", noop)
			},
			wantNames: []string{"prompting"},
			wantPrio:  []string{priority.Prompting},
		},
		{
			name:     "task prefix is required and stripped",
			features: generator.Features{TaskPrefix: "task_"},
			define: func(b *generator.Base) {
				b.Define("task_writing", noop)
				b.Define("writing", noop)
				b.Define("task_misc", noop)
				b.Define("task_", noop)
			},
			wantNames: []string{"writing", "misc"},
			wantPrio:  []string{priority.Writing, priority.Default},
		},
		{
			name: "groups under priorities expand to steps",
			define: func(b *generator.Base) {
				b.DefineGroup("writing",
					generator.Step{Name: "files", Run: noop},
					generator.Step{Name: "manifest", Run: noop},
				)
				b.DefineGroup("helpers", generator.Step{Name: "x", Run: noop})
			},
			wantNames: []string{"writing:files", "writing:manifest"},
			wantPrio:  []string{priority.Writing, priority.Writing},
		},
		{
			name: "custom priority",
			features: generator.Features{CustomPriorities: []priority.Priority{
				{Name: "exec", Before: priority.Writing},
			}},
			define: func(b *generator.Base) {
				b.Define("exec", noop)
			},
			wantNames: []string{"exec"},
			wantPrio:  []string{"exec"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBase(t, newEnv(t), "app", tt.features)
			tt.define(b)

			specs, err := b.ClassifyTasks()
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, specNames(specs))

			prios := make([]string, len(specs))
			for i, s := range specs {
				prios[i] = s.Priority
			}
			assert.Equal(t, tt.wantPrio, prios)
		})
	}
}

func TestClassifyTasks_Inheritance(t *testing.T) {
	tests := []struct {
		name    string
		inherit bool
		want    []string
	}{
		{"last layer only", false, []string{"writing", "end"}},
		{"all layers, ancestors first", true, []string{"initializing", "writing", "end"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			b := newBase(t, newEnv(t), "app", generator.Features{InheritTasks: tt.inherit})
			b.Define("initializing", rec.task("parent.init"))
			b.Define("writing", rec.task("parent.writing"))

			b.Extend()
			b.Define("writing", rec.task("child.writing"))
			b.Define("end", rec.task("child.end"))

			specs, err := b.ClassifyTasks()
			require.NoError(t, err)
			assert.Equal(t, tt.want, specNames(specs))

			for _, s := range specs {
				if s.Name == "writing" {
					require.NoError(t, s.Run(context.Background()))
				}
			}
			assert.Equal(t, []string{"child.writing"}, rec.list())
		})
	}
}

func TestClassifyTasks_PriorityFlags(t *testing.T) {
	off := false
	b := newBase(t, newEnv(t), "app", generator.Features{CustomPriorities: []priority.Priority{
		{Name: "setup", Before: priority.Prompting, Once: true, Args: []any{"x"}},
		{Name: "hidden", Run: &off},
		{Name: "later", Skip: true},
	}})
	b.Define("setup", noop, generator.Cancellable())
	b.Define("hidden", noop)
	b.Define("later", noop)
	b.Define("writing", noop, generator.Once())

	specs, err := b.ClassifyTasks()
	require.NoError(t, err)
	require.Len(t, specs, 4)

	byName := make(map[string]generator.TaskSpec)
	for _, s := range specs {
		byName[s.Name] = s
	}

	assert.True(t, byName["setup"].Once)
	assert.True(t, byName["setup"].Cancellable)
	assert.True(t, byName["setup"].Queued)
	assert.False(t, byName["hidden"].Queued)
	assert.True(t, byName["later"].Skip)
	assert.True(t, byName["writing"].Once)
	assert.True(t, byName["writing"].Edit)
}

func TestDefine_InvalidDefinitions(t *testing.T) {
	tests := []struct {
		name   string
		define func(b *generator.Base)
	}{
		{"empty name", func(b *generator.Base) { b.Define("", noop) }},
		{"nil func", func(b *generator.Base) { b.Define("writing", nil) }},
		{"empty group", func(b *generator.Base) { b.DefineGroup("writing") }},
		{"step without func", func(b *generator.Base) {
			b.DefineGroup("writing", generator.Step{Name: "a"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBase(t, newEnv(t), "app", generator.Features{})
			tt.define(b)

			_, err := b.ClassifyTasks()
			require.Error(t, err)
			assert.True(t, errors.Is(err, oerrors.ErrConfiguration))
		})
	}
}

func TestNew_DuplicatePriority(t *testing.T) {
	env := newEnv(t)
	_, err := generator.New(generator.Options{Env: env, Namespace: "app"}, generator.Features{
		CustomPriorities: []priority.Priority{{Name: "exec"}, {Name: "exec"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrConfiguration))
}

func TestNew_MissingInputs(t *testing.T) {
	_, err := generator.New(generator.Options{Namespace: "app"}, generator.Features{})
	assert.True(t, errors.Is(err, oerrors.ErrConfiguration))

	_, err = generator.New(generator.Options{Env: newEnv(t)}, generator.Features{})
	assert.True(t, errors.Is(err, oerrors.ErrConfiguration))
}

func TestIdentity(t *testing.T) {
	env := newEnv(t)
	tests := []struct {
		name     string
		args     []string
		features generator.Features
		wantKey  string
		wantID   string
	}{
		{"not unique", nil, generator.Features{}, "", "app"},
		{"unique by namespace", []string{"x"}, generator.Features{Unique: generator.UniqueNamespace}, "app", "app"},
		{"unique by argument", []string{"x"}, generator.Features{Unique: generator.UniqueArgument}, "app#x", "app#x"},
		{"unique by argument without args", nil, generator.Features{Unique: generator.UniqueArgument}, "app", "app"},
		{"explicit key wins", []string{"x"}, generator.Features{UniqueBy: "custom", Unique: generator.UniqueArgument}, "custom", "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := generator.New(generator.Options{Env: env, Namespace: "app", Args: tt.args}, tt.features)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, b.UniqueKey())
			assert.Equal(t, tt.wantID, b.Identity())
		})
	}
}
