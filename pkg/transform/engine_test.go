package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recast-io/recast/pkg/models"
	"github.com/recast-io/recast/pkg/recerrors"
)

func record(data map[string]interface{}) *models.RawRecord {
	return &models.RawRecord{
		Data: data,
		Meta: models.RecordMeta{File: "input.csv", Line: 7},
	}
}

func TestTranslateExtractionAndNesting(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  a: "x:int"
  b:
    c: "y:string"
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{"x": "5", "y": "foo"}))
	require.NoError(t, err)

	assert.Equal(t, int64(5), out["a"])
	nested, ok := out["b"].(map[string]interface{})
	require.True(t, ok, "b should be a nested object")
	assert.Equal(t, "foo", nested["c"])
}

func TestTranslateSiblingsSharePrefix(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  origin:
    host: "h"
    port: "p:int"
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{"h": "db1", "p": "5432"}))
	require.NoError(t, err)

	origin, ok := out["origin"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "db1", origin["host"])
	assert.Equal(t, int64(5432), origin["port"])
}

func TestTranslateLaterRuleOverrides(t *testing.T) {
	spec := &Spec{Rules: []FieldRule{
		{Path: []string{"flag"}, Kind: KindExtraction, InputField: "first"},
		{Path: []string{"flag"}, Kind: KindExtraction, InputField: "second"},
	}}
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{"first": "a", "second": "b"}))
	require.NoError(t, err)
	assert.Equal(t, "b", out["flag"])
}

func TestTranslateLaterRuleReplacesScalarIntermediate(t *testing.T) {
	spec := &Spec{Rules: []FieldRule{
		{Path: []string{"a"}, Kind: KindExtraction, InputField: "x"},
		{Path: []string{"a", "b"}, Kind: KindExtraction, InputField: "y"},
	}}
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{"x": "scalar", "y": "deep"}))
	require.NoError(t, err)

	nested, ok := out["a"].(map[string]interface{})
	require.True(t, ok, "scalar at a should be replaced by an object")
	assert.Equal(t, "deep", nested["b"])
}

func TestTranslateMissingInputFieldWritesNothing(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  present: "x"
  absent: "nope:int"
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{"x": "v"}))
	require.NoError(t, err)

	assert.Equal(t, "v", out["present"])
	_, ok := out["absent"]
	assert.False(t, ok, "absent input must not materialize an output field")
}

func TestTranslateExpressionReadsInputWritesOutput(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  service: "svc"
  label: "{output.label = input.svc + '/' + input.env}"
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{"svc": "api", "env": "prod"}))
	require.NoError(t, err)

	assert.Equal(t, "api", out["service"])
	assert.Equal(t, "api/prod", out["label"])
}

func TestTranslateExpressionSeesEarlierOutput(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  amount: "amt:float"
  doubled: "{output.doubled = output.amount * 2}"
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{"amt": "2.5"}))
	require.NoError(t, err)
	assert.EqualValues(t, 5.0, out["doubled"])
}

func TestTranslateExpressionCannotCorruptInput(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  a: "{input.x = 'mutated'; output.a = 1}"
  b: "{output.b = input.x}"
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	raw := record(map[string]interface{}{"x": "original"})
	out, err := engine.Translate(raw)
	require.NoError(t, err)

	assert.Equal(t, "original", raw.Data["x"])
	assert.Equal(t, "original", out["b"], "each expression gets a fresh input copy")
}

func TestTranslateCatchAllRunsLast(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  id: "id:int"
translate: "{output.summary = 'id=' + output.id}"
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{"id": "9"}))
	require.NoError(t, err)
	assert.Equal(t, "id=9", out["summary"])
}

func TestTranslateCoercionFailureIsFatal(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  n: "raw:int"
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	_, err = engine.Translate(record(map[string]interface{}{"raw": "not-a-number"}))
	require.Error(t, err)
	assert.True(t, recerrors.IsType(err, recerrors.ErrorTypeCoercion))
	assert.True(t, recerrors.IsFatal(err))
}

func TestTranslateExpressionRuntimeError(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  a: "{boom()}"
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	_, err = engine.Translate(record(map[string]interface{}{}))
	require.Error(t, err)
	assert.True(t, recerrors.IsType(err, recerrors.ErrorTypeExpression))

	var recErr *recerrors.Error
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "input.csv", recErr.Detail("file"))
	assert.Equal(t, 7, recErr.Detail("line"))
}

func TestNewEngineRejectsBrokenExpression(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  a: "{output.a = }"
`))
	require.NoError(t, err)

	_, err = NewEngine(spec)
	require.Error(t, err)
	assert.True(t, recerrors.IsType(err, recerrors.ErrorTypeExpression))
}

func TestNewEngineRejectsUnknownModule(t *testing.T) {
	spec := &Spec{Require: []string{"telepathy"}}

	_, err := NewEngine(spec)
	require.Error(t, err)
	assert.True(t, recerrors.IsType(err, recerrors.ErrorTypeExpression))
	assert.Contains(t, err.Error(), "telepathy")
}

func TestTranslateEmptySpec(t *testing.T) {
	engine, err := NewEngine(&Spec{})
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{"ignored": "x"}))
	require.NoError(t, err)
	assert.Empty(t, out)
}
