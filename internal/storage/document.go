package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	oerrors "github.com/opmodel/scaffold/internal/errors"
)

// Object is a JSON object that remembers key insertion order.
type Object = orderedmap.OrderedMap[string, any]

func newObject() *Object {
	return orderedmap.New[string, any]()
}

// decodeDocument parses data into ordered values. The top level must be an object.
func decodeDocument(data []byte) (*Object, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return newObject(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}

	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("top-level value is %T, not an object", v)
	}
	return obj, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if n, ok := tok.(json.Number); ok {
		return numberValue(n)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := newObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T", keyTok)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// maxExactInt is the largest integer float64 represents exactly.
const maxExactInt = 1 << 53

// numberValue decodes numbers as float64, except integers float64 cannot
// hold exactly, which stay int64.
func numberValue(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil && (i > maxExactInt || i < -maxExactInt) {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("number %s: %w", n, err)
	}
	return f, nil
}

// normalize converts an arbitrary Go value into the ordered JSON value space:
// string, float64 (int64 past 2^53), bool, nil, []any and *Object.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %T is not JSON-serializable: %v", oerrors.ErrInvalidValue, v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeValue(dec)
}

// encodeDocument renders doc with two-space indentation and a trailing newline.
func encodeDocument(doc *Object) ([]byte, error) {
	compact, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// plain converts ordered values into map[string]any trees safe to hand out.
func plain(v any) any {
	switch t := v.(type) {
	case *Object:
		out := make(map[string]any, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = plain(pair.Value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

func clone(v any) any {
	switch t := v.(type) {
	case *Object:
		out := newObject()
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, clone(pair.Value))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = clone(item)
		}
		return out
	default:
		return v
	}
}

func keys(obj *Object) []string {
	out := make([]string, 0, obj.Len())
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// sortDeep returns a copy of v with every object's keys in lexical order.
func sortDeep(v any) any {
	switch t := v.(type) {
	case *Object:
		names := keys(t)
		slices.Sort(names)
		out := newObject()
		for _, k := range names {
			item, _ := t.Get(k)
			out.Set(k, sortDeep(item))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = sortDeep(item)
		}
		return out
	default:
		return v
	}
}

// mergeDeep merges src into dst. Nested objects merge recursively; any other
// incoming value replaces the existing one.
func mergeDeep(dst, src *Object) {
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		incoming, isObj := pair.Value.(*Object)
		if existing, ok := dst.Get(pair.Key); ok && isObj {
			if current, ok := existing.(*Object); ok {
				mergeDeep(current, incoming)
				continue
			}
		}
		dst.Set(pair.Key, clone(pair.Value))
	}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func getPath(obj *Object, path []string) (any, bool) {
	var cur any = obj
	for _, seg := range path {
		o, ok := cur.(*Object)
		if !ok {
			return nil, false
		}
		cur, ok = o.Get(seg)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setPath assigns value at path, replacing non-object intermediates.
func setPath(obj *Object, path []string, value any) {
	cur := obj
	for _, seg := range path[:len(path)-1] {
		next, ok := cur.Get(seg)
		child, isObj := next.(*Object)
		if !ok || !isObj {
			child = newObject()
			cur.Set(seg, child)
		}
		cur = child
	}
	cur.Set(path[len(path)-1], value)
}

func deletePath(obj *Object, path []string) {
	parent, ok := getPath(obj, path[:len(path)-1])
	if !ok {
		return
	}
	if o, ok := parent.(*Object); ok {
		o.Delete(path[len(path)-1])
	}
}
