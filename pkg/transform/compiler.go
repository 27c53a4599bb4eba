package transform

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/recast-io/recast/pkg/recerrors"
)

// Compile parses a transform specification into an ordered rule list.
// The walk over fields is depth-first in document order, because later
// rules at the same output path deliberately override earlier ones during
// translation: spec authors set defaults first and override them below.
func Compile(specText []byte) (*Spec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(specText, &doc); err != nil {
		return nil, recerrors.Wrap(err, recerrors.ErrorTypeTransformParse, "transform spec is not valid YAML")
	}

	spec := &Spec{}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		// Empty document compiles to an empty spec.
		return spec, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, recerrors.Newf(recerrors.ErrorTypeTransformParse,
			"transform spec must be a mapping, got %s", kindName(root))
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := resolveAlias(root.Content[i+1])

		switch key {
		case "fields":
			if value.Tag == "!!null" {
				continue
			}
			if value.Kind != yaml.MappingNode {
				return nil, recerrors.Newf(recerrors.ErrorTypeTransformParse,
					"fields must be a mapping, got %s", kindName(value))
			}
			if err := walkFields(value, nil, spec); err != nil {
				return nil, err
			}

		case "translate":
			if value.Kind != yaml.ScalarNode || value.Tag != "!!str" {
				return nil, recerrors.Newf(recerrors.ErrorTypeTransformParse,
					"translate must be a string, got %s", kindName(value))
			}
			spec.CatchAll = stripBraces(value.Value)

		case "require":
			if value.Tag == "!!null" {
				continue
			}
			if value.Kind != yaml.SequenceNode {
				return nil, recerrors.Newf(recerrors.ErrorTypeTransformParse,
					"require must be a list, got %s", kindName(value))
			}
			for _, item := range value.Content {
				item = resolveAlias(item)
				if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
					return nil, recerrors.Newf(recerrors.ErrorTypeTransformParse,
						"require entries must be strings, got %s", kindName(item))
				}
				spec.Require = append(spec.Require, item.Value)
			}
		}
	}

	return spec, nil
}

// walkFields recursively flattens a nested fields mapping into rules.
// Mapping values introduce nesting and emit no rule for the branch key
// itself, only for its leaves.
func walkFields(node *yaml.Node, prefix []string, spec *Spec) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolveAlias(node.Content[i+1])

		path := make([]string, 0, len(prefix)+1)
		path = append(path, prefix...)
		path = append(path, key)

		switch {
		case value.Kind == yaml.ScalarNode && value.Tag == "!!str":
			rule, err := compileLeaf(path, value.Value)
			if err != nil {
				return err
			}
			spec.Rules = append(spec.Rules, rule)

		case value.Kind == yaml.MappingNode:
			if err := walkFields(value, path, spec); err != nil {
				return err
			}

		default:
			return recerrors.Newf(recerrors.ErrorTypeTransformParse,
				"field %q must be a string or a mapping, got %s",
				strings.Join(path, "."), kindName(value)).
				WithDetail("field", strings.Join(path, "."))
		}
	}
	return nil
}

// compileLeaf compiles one string leaf into a rule. A value wrapped in a
// single pair of braces is a scripted expression; anything else splits on
// the first colon into an input field and an optional coercion tag.
func compileLeaf(path []string, value string) (FieldRule, error) {
	if isBraced(value) {
		return FieldRule{
			Path: path,
			Kind: KindExpression,
			Code: stripBraces(value),
		}, nil
	}

	inputField := value
	tag := ""
	if idx := strings.Index(value, ":"); idx >= 0 {
		inputField = value[:idx]
		tag = value[idx+1:]
	}

	coercion, err := ParseCoercion(tag)
	if err != nil {
		return FieldRule{}, recerrors.Wrap(err, recerrors.ErrorTypeTransformParse, "invalid field rule").
			WithDetail("field", strings.Join(path, "."))
	}

	return FieldRule{
		Path:       path,
		Kind:       KindExtraction,
		InputField: inputField,
		Coercion:   coercion,
	}, nil
}

func isBraced(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}'
}

// stripBraces removes one enclosing pair of braces, if present.
func stripBraces(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		return s[1 : len(s)-1]
	}
	return s
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		return node.Alias
	}
	return node
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!str":
			return "string"
		case "!!int":
			return "integer"
		case "!!float":
			return "float"
		case "!!bool":
			return "boolean"
		case "!!null":
			return "null"
		}
		return "scalar"
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
