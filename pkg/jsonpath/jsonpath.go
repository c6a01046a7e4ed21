// Package jsonpath resolves dotted path expressions against decoded JSON.
//
// A path is a sequence of segments separated by ".". Each segment is either
// a property name ("message") or a name followed by a bracketed index
// ("choices[0]"). A segment made only of digits indexes into an array, so
// "choices.0.message.content" and "choices[0].message.content" address the
// same value.
//
// Values are the tree produced by encoding/json when decoding into any:
// map[string]any, []any, string, json.Number (or float64), bool and nil.
package jsonpath

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Segment is one step of a parsed path.
type Segment struct {
	// Name selects an object property, or an array element when it is all
	// digits. An empty Name with Indexed set applies Index to the current value.
	Name string

	// Index is applied after Name when Indexed is true.
	Index   int
	Indexed bool
}

func (s Segment) String() string {
	if s.Indexed {
		return s.Name + "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// Path is a pre-parsed path expression.
type Path []Segment

var indexedSegment = regexp.MustCompile(`^(.*)\[(\d+)\]$`)

// Parse splits expr into segments. An empty expression yields an empty path,
// which never resolves.
func Parse(expr string) Path {
	if expr == "" {
		return nil
	}
	parts := strings.Split(expr, ".")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		if m := indexedSegment.FindStringSubmatch(part); m != nil {
			idx, err := strconv.Atoi(m[2])
			if err == nil {
				path = append(path, Segment{Name: m[1], Index: idx, Indexed: true})
				continue
			}
		}
		path = append(path, Segment{Name: part})
	}
	return path
}

// String renders the path back in dotted form.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// Get walks v along the path. The boolean is false when the path cannot be
// resolved: a missing property, an out-of-range index, a step into a
// scalar, or a null intermediate. A JSON null at the end of the path is
// reported as (nil, true).
func (p Path) Get(v any) (any, bool) {
	if len(p) == 0 {
		return nil, false
	}
	cur := v
	for _, seg := range p {
		if cur == nil {
			return nil, false
		}
		var ok bool
		if seg.Name != "" || !seg.Indexed {
			cur, ok = selectName(cur, seg.Name)
			if !ok {
				return nil, false
			}
		}
		if seg.Indexed {
			cur, ok = selectIndex(cur, seg.Index)
			if !ok {
				return nil, false
			}
		}
	}
	return cur, true
}

// Get parses expr and resolves it against v.
func Get(v any, expr string) (any, bool) {
	return Parse(expr).Get(v)
}

// GetString resolves expr and reports whether it names a string value.
func GetString(v any, expr string) (string, bool) {
	got, ok := Get(v, expr)
	if !ok {
		return "", false
	}
	s, ok := got.(string)
	return s, ok
}

// Decode parses a single JSON document into the value tree Get walks.
// Numbers are kept as json.Number so large integers survive unchanged.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func selectName(cur any, name string) (any, bool) {
	switch node := cur.(type) {
	case map[string]any:
		val, ok := node[name]
		return val, ok
	case []any:
		idx, ok := arrayIndex(name)
		if !ok {
			return nil, false
		}
		return selectIndex(node, idx)
	default:
		return nil, false
	}
}

func selectIndex(cur any, idx int) (any, bool) {
	arr, ok := cur.([]any)
	if !ok || idx < 0 || idx >= len(arr) {
		return nil, false
	}
	return arr[idx], true
}

// arrayIndex accepts only plain decimal digits, so "-1" or "+1" never
// address an element.
func arrayIndex(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	return idx, true
}
