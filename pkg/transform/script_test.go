package transform

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recast-io/recast/pkg/models"
)

func TestModulesListsBuiltins(t *testing.T) {
	names := Modules()
	assert.Contains(t, names, "strings")
	assert.Contains(t, names, "math")
	assert.Contains(t, names, "time")
}

func TestRegisterModule(t *testing.T) {
	RegisterModule("answer", func(vm *goja.Runtime) error {
		return vm.Set("answer", 42)
	})
	assert.Contains(t, Modules(), "answer")

	spec, err := Compile([]byte(`
fields:
  a: "{output.a = answer}"
require: [answer]
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{}))
	require.NoError(t, err)
	assert.EqualValues(t, 42, out["a"])
}

func TestStringsModule(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  upper: "{output.upper = strings.upper(input.name)}"
  trimmed: "{output.trimmed = strings.trim(input.padded)}"
require: [strings]
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{
		"name":   "orders",
		"padded": "  x  ",
	}))
	require.NoError(t, err)
	assert.Equal(t, "ORDERS", out["upper"])
	assert.Equal(t, "x", out["trimmed"])
}

func TestMathModule(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  rounded: "{output.rounded = math.round(input.v)}"
require: [math]
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{"v": 2.6}))
	require.NoError(t, err)
	assert.EqualValues(t, 3, out["rounded"])
}

func TestTimeModule(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  iso: "{output.iso = time.unix(input.epoch)}"
  epoch: "{output.epoch = time.parse(input.iso)}"
require: [time]
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	out, err := engine.Translate(record(map[string]interface{}{
		"epoch": int64(1717245000),
		"iso":   "2024-06-01T12:30:00Z",
	}))
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T12:30:00Z", out["iso"])
	assert.EqualValues(t, 1717245000, out["epoch"])
}

func TestModulesNotInstalledWithoutRequire(t *testing.T) {
	spec, err := Compile([]byte(`
fields:
  a: "{output.a = strings.upper('x')}"
`))
	require.NoError(t, err)
	engine, err := NewEngine(spec)
	require.NoError(t, err)

	_, err = engine.Translate(&models.RawRecord{Data: map[string]interface{}{}})
	require.Error(t, err, "strings module must be declared in require")
}
