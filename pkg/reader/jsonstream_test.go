package reader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStreamOneRecordPerValue(t *testing.T) {
	path := writeTempFile(t, "data.jsonl", `{"id":1,"name":"alpha"}
{"id":2,"name":"beta"}
`)

	r, err := New("json", Options{Path: path})
	require.NoError(t, err)
	records := collect(t, r)

	require.Len(t, records, 2)
	assert.Equal(t, float64(1), records[0].Data["id"])
	assert.Equal(t, "beta", records[1].Data["name"])
	assert.Equal(t, 1, records[0].Meta.Line)
	assert.Equal(t, 2, records[1].Meta.Line)
}

func TestJSONStreamConcatenatedValues(t *testing.T) {
	// Whitespace between values is optional in a JSON stream.
	path := writeTempFile(t, "data.json", `{"a":1}{"a":2} {"a":3}`)

	r, err := New("json", Options{Path: path})
	require.NoError(t, err)
	records := collect(t, r)

	require.Len(t, records, 3)
	assert.Equal(t, float64(3), records[2].Data["a"])
}

func TestJSONStreamUnrollsTopLevelArray(t *testing.T) {
	path := writeTempFile(t, "data.json", `[{"a":1},{"a":2}]`)

	r, err := New("json", Options{Path: path})
	require.NoError(t, err)
	records := collect(t, r)

	require.Len(t, records, 2)
	assert.Equal(t, float64(2), records[1].Data["a"])
}

func TestJSONStreamWrapsNonObjectValues(t *testing.T) {
	path := writeTempFile(t, "data.jsonl", "42\n\"text\"\n")

	r, err := New("json", Options{Path: path})
	require.NoError(t, err)
	records := collect(t, r)

	require.Len(t, records, 2)
	assert.Equal(t, float64(42), records[0].Data["value"])
	assert.Equal(t, "text", records[1].Data["value"])
}

func TestJSONStreamNestedValuesPreserved(t *testing.T) {
	path := writeTempFile(t, "data.jsonl", `{"origin":{"host":"db1"},"tags":["a","b"]}`+"\n")

	r, err := New("json", Options{Path: path})
	require.NoError(t, err)
	records := collect(t, r)

	require.Len(t, records, 1)
	origin, ok := records[0].Data["origin"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "db1", origin["host"])
	tags, ok := records[0].Data["tags"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tags, 2)
}

func TestJSONStreamMalformedInput(t *testing.T) {
	path := writeTempFile(t, "data.jsonl", `{"a":1}`+"\n{broken\n")

	r, err := New("json", Options{Path: path})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, r.Open(ctx))
	defer func() { _ = r.Close(ctx) }()

	stream, err := r.Read(ctx)
	require.NoError(t, err)

	var count int
	for range stream.Records {
		count++
	}
	assert.Equal(t, 1, count, "the valid value before the damage is still emitted")

	streamErr, ok := <-stream.Errors
	require.True(t, ok)
	require.Error(t, streamErr)
}
