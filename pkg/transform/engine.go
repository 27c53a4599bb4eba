package transform

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/recast-io/recast/pkg/models"
	"github.com/recast-io/recast/pkg/recerrors"
)

// Engine applies a compiled transform spec to raw records.
//
// The engine owns a single script runtime: translation is a sequential
// path and scripted expressions may carry arbitrary side effects, so the
// runtime is a serialization boundary. One engine must not be shared
// across goroutines; the compiled Spec itself is immutable and may be.
type Engine struct {
	spec     *Spec
	rules    []compiledRule
	catchAll *goja.Program
	vm       *goja.Runtime
}

type compiledRule struct {
	rule FieldRule
	prog *goja.Program // non-nil for expression rules
}

// NewEngine builds an engine from a compiled spec. Required capability
// modules are resolved and scripted expressions are compiled here, so a
// broken transform fails before any record is read.
func NewEngine(spec *Spec) (*Engine, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())

	if err := installModules(vm, spec.Require); err != nil {
		return nil, err
	}

	engine := &Engine{spec: spec, vm: vm}

	for _, rule := range spec.Rules {
		cr := compiledRule{rule: rule}
		if rule.Kind == KindExpression {
			name := "field " + strings.Join(rule.Path, ".")
			prog, err := goja.Compile(name, rule.Code, false)
			if err != nil {
				return nil, recerrors.Wrap(err, recerrors.ErrorTypeExpression,
					"failed to compile scripted expression").
					WithDetail("field", strings.Join(rule.Path, "."))
			}
			cr.prog = prog
		}
		engine.rules = append(engine.rules, cr)
	}

	if spec.CatchAll != "" {
		prog, err := goja.Compile("translate", spec.CatchAll, false)
		if err != nil {
			return nil, recerrors.Wrap(err, recerrors.ErrorTypeExpression,
				"failed to compile translate expression")
		}
		engine.catchAll = prog
	}

	return engine, nil
}

// Spec returns the engine's compiled spec.
func (e *Engine) Spec() *Spec {
	return e.spec
}

// Translate applies the ordered rule list to one raw record and returns
// the structured output record.
//
// Extraction rules read their input field (absent fields write nothing),
// apply the coercion, and write at their output path; intermediate
// nesting levels materialize on demand without clobbering siblings.
// Expression rules execute with two bindings: input, a copy of the full
// raw record, and output, the record built so far — assignments into
// output are the expression's way of producing values, which permits
// multi-field and cross-field derivations. After all rules the catch-all
// translate expression, if any, runs once with the same bindings.
func (e *Engine) Translate(raw *models.RawRecord) (models.OutputRecord, error) {
	out := models.OutputRecord{}

	for _, cr := range e.rules {
		switch cr.rule.Kind {
		case KindExtraction:
			value, ok := raw.Data[cr.rule.InputField]
			if !ok {
				continue
			}
			coerced, err := coerce(cr.rule.Coercion, cr.rule.InputField, value)
			if err != nil {
				return nil, err
			}
			out.SetPath(cr.rule.Path, coerced)

		case KindExpression:
			if err := e.run(cr.prog, raw, out); err != nil {
				return nil, err
			}
		}
	}

	if e.catchAll != nil {
		if err := e.run(e.catchAll, raw, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// run executes one compiled script with fresh input/output bindings.
// input is a deep copy so scripts cannot corrupt the raw record; output
// is the live map, so script assignments flow through to the result.
func (e *Engine) run(prog *goja.Program, raw *models.RawRecord, out models.OutputRecord) error {
	if err := e.vm.Set("input", models.CopyValue(raw.Data)); err != nil {
		return recerrors.Wrap(err, recerrors.ErrorTypeExpression, "failed to bind input")
	}
	if err := e.vm.Set("output", map[string]interface{}(out)); err != nil {
		return recerrors.Wrap(err, recerrors.ErrorTypeExpression, "failed to bind output")
	}

	if _, err := e.vm.RunProgram(prog); err != nil {
		return recerrors.Wrap(err, recerrors.ErrorTypeExpression, "scripted expression failed").
			WithDetail("file", raw.Meta.File).
			WithDetail("line", raw.Meta.Line)
	}
	return nil
}
