package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/recast-io/recast/pkg/recerrors"
)

// Coercion is a type tag converting a raw value into a typed output value.
type Coercion string

const (
	// CoerceNone passes the raw value through untransformed (default).
	CoerceNone Coercion = ""
	// CoerceInt converts to int64.
	CoerceInt Coercion = "int"
	// CoerceFloat converts to float64.
	CoerceFloat Coercion = "float"
	// CoerceString converts to string.
	CoerceString Coercion = "string"
	// CoerceBool converts a small fixed token vocabulary to bool.
	CoerceBool Coercion = "bool"
	// CoerceTimestamp converts RFC3339 text or Unix epoch seconds to time.Time.
	CoerceTimestamp Coercion = "timestamp"
)

// ParseCoercion validates a coercion tag at compile time. Unknown tags are
// a compile error rather than a silent passthrough, so a typo in a
// transform fails before any record is processed.
func ParseCoercion(tag string) (Coercion, error) {
	switch Coercion(tag) {
	case CoerceNone, CoerceInt, CoerceFloat, CoerceString, CoerceBool, CoerceTimestamp:
		return Coercion(tag), nil
	}
	return CoerceNone, recerrors.Newf(recerrors.ErrorTypeTransformParse, "unknown coercion tag %q", tag)
}

// truthy and falsy are the recognized boolean token vocabularies,
// matched case-insensitively.
var (
	truthy = map[string]bool{"true": true, "t": true, "yes": true, "y": true, "1": true}
	falsy  = map[string]bool{"false": true, "f": true, "no": true, "n": true, "0": true}
)

// coerce applies a coercion to a raw value. A value that cannot be
// converted fails with a coercion error naming the field, the raw value,
// and the requested type; per the propagation policy that error is fatal
// for the run.
func coerce(c Coercion, field string, raw interface{}) (interface{}, error) {
	switch c {
	case CoerceNone:
		return raw, nil

	case CoerceInt:
		switch v := raw.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case float64:
			if v == math.Trunc(v) {
				return int64(v), nil
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n, nil
			}
		}

	case CoerceFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		case int:
			return float64(v), nil
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, nil
			}
		}

	case CoerceString:
		switch v := raw.(type) {
		case string:
			return v, nil
		case nil:
			return "", nil
		default:
			return fmt.Sprint(v), nil
		}

	case CoerceBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			token := strings.ToLower(strings.TrimSpace(v))
			if truthy[token] {
				return true, nil
			}
			if falsy[token] {
				return false, nil
			}
		case float64:
			if v == 1 {
				return true, nil
			}
			if v == 0 {
				return false, nil
			}
		}

	case CoerceTimestamp:
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case string:
			s := strings.TrimSpace(v)
			if ts, err := time.Parse(time.RFC3339, s); err == nil {
				return ts, nil
			}
			if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
				return time.Unix(epoch, 0).UTC(), nil
			}
		case float64:
			return time.Unix(int64(v), 0).UTC(), nil
		case int64:
			return time.Unix(v, 0).UTC(), nil
		}
	}

	return nil, recerrors.Newf(recerrors.ErrorTypeCoercion,
		"cannot convert field %q value %v to %s", field, raw, c).
		WithDetail("field", field).
		WithDetail("value", raw).
		WithDetail("type", string(c))
}
