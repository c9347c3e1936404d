// Package jsongroup serializes Go values to JSON while restricting the emitted
// properties to a set of named serialization groups. Field selection is done
// by github.com/liip/sheriff; this package adds the format check and the
// call context used by the serializers.
//
// Group membership is declared per struct field with the `groups` tag:
//
//	type Variant struct {
//	    ID      *int64 `json:"id" groups:"Default"`
//	    OnHand  int    `json:"onHand" groups:"Detailed"`
//	    Secret  string `json:"-"`
//	}
//
// Once groups are requested, a field without a `groups` tag is not emitted.
// When no groups are requested every field is emitted.
package jsongroup

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/liip/sheriff"
)

// DefaultGroup is the group carrying an object's identity.
const DefaultGroup = "Default"

// FormatJSON is the only output format supported by Serialize.
const FormatJSON = "json"

// ErrUnsupportedFormat is returned by Serialize for formats other than FormatJSON.
var ErrUnsupportedFormat = errors.New("unsupported serialization format")

// Context carries the serialization options for a single call.
type Context struct {
	Groups []string
}

// NewContext returns a Context selecting the given groups.
func NewContext(groups ...string) Context {
	return Context{Groups: groups}
}

// Serialize encodes v in the given format using the groups selected by ctx.
func Serialize(v any, format string, ctx Context) ([]byte, error) {
	if format != FormatJSON {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return Marshal(v, ctx.Groups...)
}

// Marshal encodes v as JSON, emitting only struct fields that belong to one of
// the given groups.
func Marshal(v any, groups ...string) ([]byte, error) {
	tree, err := Normalize(v, groups...)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// Normalize converts v into a tree of maps, slices and scalars filtered by
// groups. Top-level slices are filtered element by element so that elements
// held behind interfaces are still group-filtered.
func Normalize(v any, groups ...string) (any, error) {
	opts := &sheriff.Options{Groups: groups}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return normalizeOne(opts, v)
	}

	out := make([]any, rv.Len())
	for i := range out {
		elem, err := normalizeOne(opts, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = elem
	}
	return out, nil
}

func normalizeOne(opts *sheriff.Options, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, nil
	}
	tree, err := sheriff.Marshal(opts, v)
	if err != nil {
		return nil, fmt.Errorf("group filter: %w", err)
	}
	return tree, nil
}
