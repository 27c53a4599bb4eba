// Package transform implements the transform compiler and translation
// engine at the heart of recast.
//
// A transform specification is a YAML document with up to three top-level
// keys:
//
//	fields:            # nested mapping of output fields
//	  event_id: "id:int"
//	  origin:
//	    host: "hostname"
//	    region: "dc:string"
//	  label: "{output.label = input.service + '/' + input.env}"
//	translate: "{output.checked = true}"   # optional catch-all script
//	require: [strings, time]               # optional capability modules
//
// A string leaf either extracts an input field (with an optional coercion
// tag after the first colon) or, when the entire value is wrapped in one
// pair of braces, runs the inner text as a scripted expression. A mapping
// leaf introduces nesting. Compile flattens the nested mapping into an
// ordered rule list with path vectors; Engine applies that list to one raw
// record at a time.
package transform

// RuleKind distinguishes the two field rule variants.
type RuleKind int

const (
	// KindExtraction extracts an input field and applies a coercion.
	KindExtraction RuleKind = iota
	// KindExpression runs a scripted expression with access to the raw
	// input and the in-progress output.
	KindExpression
)

// FieldRule is one compiled mapping instruction. Path is never empty.
type FieldRule struct {
	// Path is the output path, one element per nesting level.
	Path []string
	// Kind selects between extraction and expression.
	Kind RuleKind
	// InputField is the raw record field to read (extraction only).
	InputField string
	// Coercion is the type conversion to apply (extraction only).
	Coercion Coercion
	// Code is the scripted expression source (expression only).
	Code string
}

// Spec is the compiled form of a transform specification. It is immutable
// once compiled and safe to share read-only for the duration of a run.
type Spec struct {
	// Rules in specification order. Later rules at the same output path
	// override earlier ones during translation.
	Rules []FieldRule
	// CatchAll is an optional scripted expression run once per record
	// after all field rules.
	CatchAll string
	// Require lists capability module names expressions depend on. The
	// compiler stores them opaquely; the engine resolves them.
	Require []string
}
