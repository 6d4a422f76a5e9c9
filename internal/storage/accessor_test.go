package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessor(t *testing.T) {
	s := newStore(t, newEditor(), Options{Name: "ns"})
	a := s.Accessor()

	assert.Empty(t, a.Keys())
	require.NoError(t, a.Set("first", 1))
	require.NoError(t, a.Set("second", "two"))

	assert.Equal(t, []string{"first", "second"}, a.Keys())
	assert.True(t, a.Has("first"))
	assert.False(t, a.Has("third"))
	assert.Equal(t, "two", a.Get("second"))

	_, err := s.Set("third", true)
	require.NoError(t, err)
	assert.True(t, a.Has("third"), "accessor reflects writes made through the store")

	assert.Error(t, a.Set("bad", func() {}))
}

func TestField(t *testing.T) {
	type license struct {
		Name string `json:"name"`
		Year int    `json:"year"`
	}

	s := newStore(t, newEditor(), Options{Name: "ns"})
	f := NewField[license](s, "license")
	assert.Equal(t, "license", f.Key())

	_, ok, err := f.Get()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Set(license{Name: "MIT", Year: 2026}))
	got, ok, err := f.Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, license{Name: "MIT", Year: 2026}, got)

	count := NewField[int](s, "count")
	require.NoError(t, count.Set(7))
	n, _, err := count.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = s.Set("broken", "not a number")
	require.NoError(t, err)
	_, _, err = NewField[[]int](s, "broken").Get()
	assert.Error(t, err)
}

func TestStorage_Decode(t *testing.T) {
	s := newStore(t, newEditor(), Options{})
	_, err := s.SetAll(map[string]any{"name": "demo", "skipInstall": true})
	require.NoError(t, err)

	var cfg struct {
		Name        string `json:"name"`
		SkipInstall bool   `json:"skipInstall"`
	}
	require.NoError(t, s.Decode(&cfg))
	assert.Equal(t, "demo", cfg.Name)
	assert.True(t, cfg.SkipInstall)
}
