// Package storage provides a namespaced key/value store persisted as a JSON
// document. Several stores may share one file under different names; every
// write re-reads the whole document and replaces only its own slice.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/output"
)

// cacheSize bounds the number of parsed documents kept per store family.
const cacheSize = 32

// FS is the file editor the store reads and writes through.
type FS interface {
	// Read returns the file contents, or an error matching fs.ErrNotExist.
	Read(path string) ([]byte, error)

	// Write replaces the file contents.
	Write(path string, data []byte) error

	// Subscribe calls fn with the path of every change and returns a
	// function that cancels the subscription.
	Subscribe(fn func(path string)) func()
}

// Options configures a Storage.
type Options struct {
	// Name is the dot-separated key the store lives under. Empty means the
	// whole document.
	Name string

	// LodashPath makes Get, Set and Delete treat dotted keys as paths.
	LodashPath bool

	// DisableCache re-reads the document on every access.
	DisableCache bool

	// DisableCacheByFile drops every cached document on any change, not only
	// changes to this store's path.
	DisableCacheByFile bool

	// Sorted writes object keys in lexical order at every depth.
	Sorted bool
}

// Storage is a namespaced view over a JSON document.
type Storage struct {
	fs          FS
	path        string
	opts        Options
	name        []string
	cache       *lru.Cache[string, *Object]
	unsubscribe func()
}

// New creates a store over path. A nil editor or empty path is a configuration error.
func New(editor FS, path string, opts Options) (*Storage, error) {
	if editor == nil {
		return nil, oerrors.NewConfigurationError("storage requires a file editor", "fs", "")
	}
	if path == "" {
		return nil, oerrors.NewConfigurationError("storage requires a file path", "path", "")
	}

	s := &Storage{
		fs:   editor,
		path: filepath.Clean(path),
		opts: opts,
		name: splitPath(opts.Name),
	}

	if !opts.DisableCache {
		cache, err := lru.New[string, *Object](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating storage cache: %w", err)
		}
		s.cache = cache
		s.unsubscribe = editor.Subscribe(s.invalidate)
	}

	return s, nil
}

func (s *Storage) invalidate(changed string) {
	if s.opts.DisableCacheByFile {
		s.cache.Purge()
		return
	}
	if changed == s.path {
		s.cache.Remove(changed)
	}
}

// Close releases the change subscription. Stores from CreateStorage hold
// their own subscription and are closed independently.
func (s *Storage) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Path returns the backing file.
func (s *Storage) Path() string {
	return s.path
}

// Name returns the dot-separated namespace, empty for the whole document.
func (s *Storage) Name() string {
	return strings.Join(s.name, ".")
}

// document returns the parsed backing file. The result may be cached and
// must not be mutated.
func (s *Storage) document() *Object {
	if s.cache != nil {
		if doc, ok := s.cache.Get(s.path); ok {
			return doc
		}
	}

	doc := s.load()
	if s.cache != nil {
		s.cache.Add(s.path, doc)
	}
	return doc
}

func (s *Storage) load() *Object {
	data, err := s.fs.Read(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return newObject()
	}
	if err != nil {
		output.Warn("reading storage file", "path", s.path, "err", err)
		return newObject()
	}

	doc, err := decodeDocument(data)
	if err != nil {
		output.Warn("ignoring unparsable storage file", "path", s.path, "err", err)
		return newObject()
	}
	return doc
}

// slice returns a private copy of this store's namespace.
func (s *Storage) slice() *Object {
	v, ok := getPath(s.document(), s.name)
	if !ok {
		return newObject()
	}
	obj, ok := v.(*Object)
	if !ok {
		return newObject()
	}
	return clone(obj).(*Object)
}

// persist writes slice into a fresh copy of the full document.
func (s *Storage) persist(slice *Object) error {
	full := s.load()

	if len(s.name) == 0 {
		full = slice
	} else {
		setPath(full, s.name, slice)
	}

	if s.opts.Sorted {
		full = sortDeep(full).(*Object)
	}

	data, err := encodeDocument(full)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	if err := s.fs.Write(s.path, data); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}

	if s.cache != nil {
		s.cache.Add(s.path, full)
	}
	return nil
}

func (s *Storage) keyPath(key string) []string {
	if s.opts.LodashPath {
		return splitPath(key)
	}
	return []string{key}
}

// Get returns the value under key, or nil.
func (s *Storage) Get(key string) any {
	v, _ := getPath(s.slice(), s.keyPath(key))
	return plain(v)
}

// GetPath returns the value at a dotted path regardless of LodashPath.
func (s *Storage) GetPath(path string) any {
	v, _ := getPath(s.slice(), splitPath(path))
	return plain(v)
}

// Has reports whether key is present.
func (s *Storage) Has(key string) bool {
	_, ok := getPath(s.slice(), s.keyPath(key))
	return ok
}

// All returns a copy of the whole namespace.
func (s *Storage) All() map[string]any {
	return plain(s.slice()).(map[string]any)
}

// Keys returns the namespace keys in document order.
func (s *Storage) Keys() []string {
	return keys(s.slice())
}

// Set stores value under key and persists. Values that cannot be encoded as
// JSON fail with ErrInvalidValue.
func (s *Storage) Set(key string, value any) (any, error) {
	return s.set(s.keyPath(key), value)
}

// SetPath stores value at a dotted path regardless of LodashPath.
func (s *Storage) SetPath(path string, value any) (any, error) {
	return s.set(splitPath(path), value)
}

func (s *Storage) set(path []string, value any) (any, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty key", oerrors.ErrInvalidValue)
	}
	v, err := normalize(value)
	if err != nil {
		return nil, err
	}

	slice := s.slice()
	setPath(slice, path, v)
	if err := s.persist(slice); err != nil {
		return nil, err
	}
	return plain(v), nil
}

// SetAll stores every key of values, which must encode as a JSON object,
// with a single write.
func (s *Storage) SetAll(values any) (map[string]any, error) {
	obj, err := objectArg("SetAll", values)
	if err != nil {
		return nil, err
	}

	slice := s.slice()
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		setPath(slice, s.keyPath(pair.Key), pair.Value)
	}
	if err := s.persist(slice); err != nil {
		return nil, err
	}
	return plain(obj).(map[string]any), nil
}

// Delete removes key and persists.
func (s *Storage) Delete(key string) error {
	path := s.keyPath(key)
	if len(path) == 0 {
		return nil
	}
	slice := s.slice()
	deletePath(slice, path)
	return s.persist(slice)
}

// Defaults sets only the keys absent from the namespace and returns the
// resulting namespace.
func (s *Storage) Defaults(values any) (map[string]any, error) {
	obj, err := objectArg("Defaults", values)
	if err != nil {
		return nil, err
	}

	slice := s.slice()
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		if _, exists := slice.Get(pair.Key); !exists {
			slice.Set(pair.Key, pair.Value)
		}
	}
	if err := s.persist(slice); err != nil {
		return nil, err
	}
	return plain(slice).(map[string]any), nil
}

// Merge deep-merges values into the namespace, incoming values winning, and
// returns the resulting namespace.
func (s *Storage) Merge(values any) (map[string]any, error) {
	obj, err := objectArg("Merge", values)
	if err != nil {
		return nil, err
	}

	slice := s.slice()
	mergeDeep(slice, obj)
	if err := s.persist(slice); err != nil {
		return nil, err
	}
	return plain(slice).(map[string]any), nil
}

// objectArg normalizes values and requires a JSON object.
func objectArg(op string, values any) (*Object, error) {
	if values == nil {
		return nil, oerrors.NewConfigurationError(op+" requires an object", "values", "")
	}
	v, err := normalize(values)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, oerrors.NewConfigurationError(
			fmt.Sprintf("%s requires an object, got %T", op, values), "values", "")
	}
	return obj, nil
}

// CreateStorage returns a store for a sub-namespace of this one, sharing the
// backing file, options and cache.
func (s *Storage) CreateStorage(path string) *Storage {
	child := &Storage{
		fs:    s.fs,
		path:  s.path,
		opts:  s.opts,
		name:  append(slices.Clone(s.name), splitPath(path)...),
		cache: s.cache,
	}
	if child.cache != nil {
		child.unsubscribe = s.fs.Subscribe(child.invalidate)
	}
	return child
}
