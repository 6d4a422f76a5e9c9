package storage

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Accessor is a live view over a store: every call reads or writes the
// current document.
type Accessor struct {
	s *Storage
}

// Accessor returns a live view over the store.
func (s *Storage) Accessor() *Accessor {
	return &Accessor{s: s}
}

// Keys returns the current keys in document order.
func (a *Accessor) Keys() []string { return a.s.Keys() }

// Has reports whether key is present.
func (a *Accessor) Has(key string) bool { return a.s.Has(key) }

// Get returns the value under key.
func (a *Accessor) Get(key string) any { return a.s.Get(key) }

// Set stores value under key.
func (a *Accessor) Set(key string, value any) error {
	_, err := a.s.Set(key, value)
	return err
}

// Field is a typed accessor for one key.
type Field[T any] struct {
	s   *Storage
	key string
}

// NewField returns a typed accessor for key.
func NewField[T any](s *Storage, key string) Field[T] {
	return Field[T]{s: s, key: key}
}

// Key returns the field key.
func (f Field[T]) Key() string {
	return f.key
}

// Get decodes the stored value into T. A missing key yields the zero value
// and false.
func (f Field[T]) Get() (T, bool, error) {
	var out T
	if !f.s.Has(f.key) {
		return out, false, nil
	}
	if err := decode(f.s.Get(f.key), &out); err != nil {
		return out, true, fmt.Errorf("decoding %s: %w", f.key, err)
	}
	return out, true, nil
}

// Set stores v under the field key.
func (f Field[T]) Set(v T) error {
	_, err := f.s.Set(f.key, v)
	return err
}

// Decode decodes the whole namespace into v, matching json tags.
func (s *Storage) Decode(v any) error {
	return decode(s.All(), v)
}

func decode(input, result any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
