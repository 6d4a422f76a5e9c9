package storage

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/memfs"
)

const rcPath = "/project/.scaffold-rc.json"

func newEditor() *memfs.Editor {
	return memfs.New(afero.NewMemMapFs(), memfs.WithReporter(nil))
}

func newStore(t *testing.T, editor FS, opts Options) *Storage {
	t.Helper()
	s, err := New(editor, rcPath, opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func raw(t *testing.T, editor FS) string {
	t.Helper()
	data, err := editor.Read(rcPath)
	require.NoError(t, err)
	return string(data)
}

// countingFS counts reads and writes going through to the editor.
type countingFS struct {
	*memfs.Editor
	reads  int
	writes int
}

func (c *countingFS) Read(path string) ([]byte, error) {
	c.reads++
	return c.Editor.Read(path)
}

func (c *countingFS) Write(path string, data []byte) error {
	c.writes++
	return c.Editor.Write(path, data)
}

func TestNew_ConfigurationErrors(t *testing.T) {
	_, err := New(nil, rcPath, Options{})
	assert.True(t, errors.Is(err, oerrors.ErrConfiguration))

	_, err = New(newEditor(), "", Options{})
	assert.True(t, errors.Is(err, oerrors.ErrConfiguration))
}

func TestStorage_NamespaceIsolation(t *testing.T) {
	editor := newEditor()
	a := newStore(t, editor, Options{Name: "a"})
	b := newStore(t, editor, Options{Name: "b"})

	_, err := a.Set("k", 1)
	require.NoError(t, err)
	_, err = b.Set("k", 2)
	require.NoError(t, err)

	assert.Equal(t, float64(1), a.Get("k"))
	assert.Equal(t, float64(2), b.Get("k"))
	assert.Equal(t, "{\n  \"a\": {\n    \"k\": 1\n  },\n  \"b\": {\n    \"k\": 2\n  }\n}\n", raw(t, editor))
}

func TestStorage_RoundTrip(t *testing.T) {
	values := []any{
		"text",
		float64(42),
		true,
		nil,
		[]any{"a", float64(1), false},
		map[string]any{"nested": map[string]any{"list": []any{"x"}}},
	}

	for _, v := range values {
		editor := newEditor()
		s := newStore(t, editor, Options{Name: "ns"})

		got, err := s.Set("k", v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, v, s.Get("k"))

		fresh := newStore(t, editor, Options{Name: "ns"})
		assert.Equal(t, v, fresh.Get("k"))
	}
}

func TestStorage_SetStructsAndNumbers(t *testing.T) {
	s := newStore(t, newEditor(), Options{})

	type answer struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	_, err := s.Set("answer", answer{Name: "x", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "x", "count": float64(3)}, s.Get("answer"))
}

func TestStorage_InvalidValues(t *testing.T) {
	s := newStore(t, newEditor(), Options{})

	tests := []struct {
		name  string
		value any
	}{
		{"function", func() {}},
		{"channel", make(chan int)},
		{"complex", complex(1, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Set("k", tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, oerrors.ErrInvalidValue))

			_, err = s.SetPath("a.b", tt.value)
			assert.True(t, errors.Is(err, oerrors.ErrInvalidValue))
		})
	}

	assert.False(t, s.Has("k"))
}

func TestStorage_DefaultsAndMerge(t *testing.T) {
	s := newStore(t, newEditor(), Options{Name: "ns"})

	_, err := s.Defaults(map[string]any{"a": 1})
	require.NoError(t, err)
	all, err := s.Defaults(map[string]any{"a": 2, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, float64(1), s.Get("a"))
	assert.Equal(t, map[string]any{"a": float64(1), "b": float64(3)}, all)

	_, err = s.Merge(map[string]any{"a": 1})
	require.NoError(t, err)
	_, err = s.Merge(map[string]any{"a": 2})
	require.NoError(t, err)
	assert.Equal(t, float64(2), s.Get("a"))
}

func TestStorage_MergeIsDeep(t *testing.T) {
	s := newStore(t, newEditor(), Options{})

	_, err := s.Set("obj", map[string]any{"keep": 1, "replace": 1})
	require.NoError(t, err)

	all, err := s.Merge(map[string]any{"obj": map[string]any{"replace": 2, "add": 3}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"obj": map[string]any{"keep": float64(1), "replace": float64(2), "add": float64(3)},
	}, all)
}

func TestStorage_ObjectArguments(t *testing.T) {
	s := newStore(t, newEditor(), Options{})

	for _, v := range []any{nil, "string", []any{1}, float64(1)} {
		_, err := s.Defaults(v)
		assert.True(t, errors.Is(err, oerrors.ErrConfiguration), "Defaults(%v)", v)
		_, err = s.Merge(v)
		assert.True(t, errors.Is(err, oerrors.ErrConfiguration), "Merge(%v)", v)
		_, err = s.SetAll(v)
		assert.True(t, errors.Is(err, oerrors.ErrConfiguration), "SetAll(%v)", v)
	}
}

func TestStorage_SortedOutput(t *testing.T) {
	editor := newEditor()
	s := newStore(t, editor, Options{Sorted: true})

	_, err := s.Set("foo", "foo")
	require.NoError(t, err)
	_, err = s.Set("bar", map[string]any{"z": 1, "a": 2})
	require.NoError(t, err)
	_, err = s.Set("array", []any{"c", "b"})
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"array\": [\n    \"c\",\n    \"b\"\n  ],\n  \"bar\": {\n    \"a\": 2,\n    \"z\": 1\n  },\n  \"foo\": \"foo\"\n}\n", raw(t, editor))
}

func TestStorage_InsertionOrderPreserved(t *testing.T) {
	editor := newEditor()
	s := newStore(t, editor, Options{})

	_, err := s.Set("foo", 1)
	require.NoError(t, err)
	_, err = s.Set("bar", 2)
	require.NoError(t, err)
	_, err = s.Set("array", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo", "bar", "array"}, s.Keys())
	assert.Equal(t, "{\n  \"foo\": 1,\n  \"bar\": 2,\n  \"array\": 3\n}\n", raw(t, editor))
}

func TestStorage_ExistingFileOrderPreserved(t *testing.T) {
	editor := newEditor()
	require.NoError(t, editor.Write(rcPath, []byte(`{"zeta":{"b":1,"a":2},"alpha":true}`)))

	s := newStore(t, editor, Options{})
	_, err := s.Set("mid", "x")
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"zeta\": {\n    \"b\": 1,\n    \"a\": 2\n  },\n  \"alpha\": true,\n  \"mid\": \"x\"\n}\n", raw(t, editor))
}

func TestStorage_MissingAndUnparsableFiles(t *testing.T) {
	editor := newEditor()
	s := newStore(t, editor, Options{Name: "ns"})
	assert.Empty(t, s.All())
	assert.Nil(t, s.Get("k"))

	require.NoError(t, editor.Write(rcPath, []byte("not json")))
	assert.Empty(t, s.All())

	require.NoError(t, editor.Write(rcPath, []byte("[1,2]")))
	assert.Empty(t, s.All())

	_, err := s.Set("k", "v")
	require.NoError(t, err)
	assert.Equal(t, "v", s.Get("k"))
}

func TestStorage_EveryMutationWritesOnce(t *testing.T) {
	c := &countingFS{Editor: newEditor()}
	s := newStore(t, c, Options{Name: "ns"})

	_, err := s.Set("a", 1)
	require.NoError(t, err)
	_, err = s.SetAll(map[string]any{"b": 2, "c": 3})
	require.NoError(t, err)
	require.NoError(t, s.Delete("a"))
	_, err = s.Defaults(map[string]any{"d": 4})
	require.NoError(t, err)
	_, err = s.Merge(map[string]any{"d": 5})
	require.NoError(t, err)

	assert.Equal(t, 5, c.writes)
	assert.Equal(t, map[string]any{"b": float64(2), "c": float64(3), "d": float64(5)}, s.All())
}

func TestStorage_Cache(t *testing.T) {
	t.Run("reads are cached until the file changes", func(t *testing.T) {
		c := &countingFS{Editor: newEditor()}
		s := newStore(t, c, Options{})

		s.Get("a")
		s.Get("b")
		assert.Equal(t, 1, c.reads)

		require.NoError(t, c.Editor.Write(rcPath, []byte(`{"a":"changed"}`)))
		assert.Equal(t, "changed", s.Get("a"))
		assert.Equal(t, 2, c.reads)
	})

	t.Run("other files do not invalidate", func(t *testing.T) {
		c := &countingFS{Editor: newEditor()}
		s := newStore(t, c, Options{})

		s.Get("a")
		require.NoError(t, c.Editor.Write("/project/other.json", []byte(`{}`)))
		s.Get("a")
		assert.Equal(t, 1, c.reads)
	})

	t.Run("disableCacheByFile invalidates on any change", func(t *testing.T) {
		c := &countingFS{Editor: newEditor()}
		s := newStore(t, c, Options{DisableCacheByFile: true})

		s.Get("a")
		require.NoError(t, c.Editor.Write("/project/other.json", []byte(`{}`)))
		s.Get("a")
		assert.Equal(t, 2, c.reads)
	})

	t.Run("disableCache always reads", func(t *testing.T) {
		c := &countingFS{Editor: newEditor()}
		s := newStore(t, c, Options{DisableCache: true})

		s.Get("a")
		s.Get("a")
		s.Get("a")
		assert.Equal(t, 3, c.reads)
	})

	t.Run("close stops invalidation", func(t *testing.T) {
		c := &countingFS{Editor: newEditor()}
		s, err := New(c, rcPath, Options{})
		require.NoError(t, err)

		s.Get("a")
		s.Close()
		require.NoError(t, c.Editor.Write(rcPath, []byte(`{"a":1}`)))
		assert.Nil(t, s.Get("a"), "stale cache is kept once unsubscribed")
	})
}

func TestStorage_LodashPath(t *testing.T) {
	s := newStore(t, newEditor(), Options{Name: "ns", LodashPath: true})

	_, err := s.Set("a.b.c", "deep")
	require.NoError(t, err)
	assert.Equal(t, "deep", s.Get("a.b.c"))
	assert.Equal(t, map[string]any{"b": map[string]any{"c": "deep"}}, s.Get("a"))

	require.NoError(t, s.Delete("a.b.c"))
	assert.Nil(t, s.Get("a.b.c"))
	assert.True(t, s.Has("a.b"))

	plainKeys := newStore(t, newEditor(), Options{})
	_, err = plainKeys.Set("a.b", 1)
	require.NoError(t, err)
	assert.Equal(t, float64(1), plainKeys.Get("a.b"))
	assert.Nil(t, plainKeys.GetPath("a.b"))
	assert.Equal(t, []string{"a.b"}, plainKeys.Keys())
}

func TestStorage_CreateStorage(t *testing.T) {
	editor := newEditor()
	root := newStore(t, editor, Options{Name: "app"})
	child := root.CreateStorage("sub")
	assert.Equal(t, "app.sub", child.Name())
	assert.Equal(t, rcPath, child.Path())

	_, err := child.Set("k", "child")
	require.NoError(t, err)
	_, err = root.Set("top", "root")
	require.NoError(t, err)

	assert.Equal(t, "child", child.Get("k"))
	assert.Equal(t, "child", root.GetPath("sub.k"))
	assert.Equal(t, "root", root.Get("top"))

	unnamed := newStore(t, editor, Options{})
	assert.Equal(t, "other", unnamed.CreateStorage("other").Name())
}

func TestStorage_CreateStorageOutlivesParent(t *testing.T) {
	editor := newEditor()
	root, err := New(editor, rcPath, Options{Name: "app"})
	require.NoError(t, err)
	child := root.CreateStorage("sub")
	t.Cleanup(child.Close)

	assert.Nil(t, child.Get("k"))
	root.Close()

	require.NoError(t, editor.Write(rcPath, []byte(`{"app":{"sub":{"k":"fresh"}}}`)))
	assert.Equal(t, "fresh", child.Get("k"))
}

func TestStorage_UncleanPathInvalidates(t *testing.T) {
	editor := newEditor()
	s, err := New(editor, "/project/./sub/../.scaffold-rc.json", Options{})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	assert.Equal(t, rcPath, s.Path())
	assert.Nil(t, s.Get("a"))

	require.NoError(t, editor.Write(rcPath, []byte(`{"a":"changed"}`)))
	assert.Equal(t, "changed", s.Get("a"))
}

func TestStorage_LargeIntegers(t *testing.T) {
	editor := newEditor()
	require.NoError(t, editor.Write(rcPath, []byte(`{"big":9007199254740993,"small":7,"ratio":0.5}`)))
	s := newStore(t, editor, Options{})

	assert.Equal(t, int64(9007199254740993), s.Get("big"))
	assert.Equal(t, float64(7), s.Get("small"))

	_, err := s.Set("bigger", int64(-9007199254740995))
	require.NoError(t, err)

	assert.JSONEq(t, `{"big":9007199254740993,"small":7,"ratio":0.5,"bigger":-9007199254740995}`, raw(t, editor))
	assert.Contains(t, raw(t, editor), "9007199254740993")
	assert.Equal(t, int64(-9007199254740995), newStore(t, editor, Options{}).Get("bigger"))
}

func TestStorage_GetReturnsCopies(t *testing.T) {
	s := newStore(t, newEditor(), Options{})
	_, err := s.Set("obj", map[string]any{"a": 1})
	require.NoError(t, err)

	got := s.Get("obj").(map[string]any)
	got["a"] = "mutated"
	assert.Equal(t, float64(1), s.GetPath("obj.a"))
}
