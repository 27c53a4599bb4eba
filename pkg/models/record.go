// Package models provides the dynamic record types flowing through recast.
//
// Input and output schemas are user-defined at runtime by the transform
// specification, so records are ordered-insertion maps with dynamically
// typed values rather than fixed structures. A RawRecord lives from the
// moment a reader produces it until its translation is validated; nothing
// survives across records.
package models

import "time"

// RecordMeta carries provenance for diagnostics: which file a record came
// from and its line (or value ordinal) within that file.
type RecordMeta struct {
	File string
	Line int
}

// RawRecord is one record as produced by a format reader. Values are
// strings for delimited input and JSON-typed values for JSON input.
type RawRecord struct {
	Data map[string]interface{}
	Meta RecordMeta
}

// NewRawRecord creates a raw record for the given source position.
func NewRawRecord(file string, line int) *RawRecord {
	return &RawRecord{
		Data: make(map[string]interface{}),
		Meta: RecordMeta{File: file, Line: line},
	}
}

// OutputRecord is the translated, possibly nested record handed to the
// sink. Nested objects are represented as map[string]interface{} values.
type OutputRecord map[string]interface{}

// SetPath writes v at the given output path, materializing intermediate
// nesting levels as objects on demand. Only the leaf key is overwritten;
// sibling branches sharing a path prefix are preserved. An intermediate
// key already holding a non-object value is replaced by an object, so the
// later rule wins at every level.
func (o OutputRecord) SetPath(path []string, v interface{}) {
	if len(path) == 0 {
		return
	}

	current := map[string]interface{}(o)
	for _, key := range path[:len(path)-1] {
		child, ok := current[key].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			current[key] = child
		}
		current = child
	}
	current[path[len(path)-1]] = v
}

// GetPath reads the value at path. The second return reports presence.
func (o OutputRecord) GetPath(path []string) (interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}

	current := map[string]interface{}(o)
	for _, key := range path[:len(path)-1] {
		child, ok := current[key].(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = child
	}
	v, ok := current[path[len(path)-1]]
	return v, ok
}

// CopyValue deep-copies a dynamically typed value. Maps and slices are
// duplicated recursively; scalars are returned as-is. Used to hand scripts
// a read-only view of the raw input.
func CopyValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(tv))
		for k, item := range tv {
			out[k] = CopyValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(tv))
		for i, item := range tv {
			out[i] = CopyValue(item)
		}
		return out
	case time.Time:
		return tv
	default:
		return v
	}
}
