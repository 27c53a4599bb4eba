package recerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewAndError(t *testing.T) {
	err := New(ErrorTypeCoercion, "cannot convert")
	if err.Error() != "coercion: cannot convert" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if len(err.Stack) == 0 {
		t.Error("expected stack capture")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, ErrorTypeSink, "failed to write")

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Error() != "sink: failed to write: disk full" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ErrorTypeInternal, "x") != nil {
		t.Error("wrapping nil must return nil")
	}
}

func TestWrapKeepsInnerStack(t *testing.T) {
	inner := New(ErrorTypeCoercion, "bad value")
	outer := Wrap(inner, ErrorTypeTransformParse, "invalid rule")

	if len(outer.Stack) != len(inner.Stack) {
		t.Error("expected the inner stack to be preserved")
	}
	if !IsType(outer, ErrorTypeTransformParse) {
		t.Error("outer type should win")
	}
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeValidation, "missing field").
		WithDetail("field", "id").
		WithDetail("line", 42)

	if err.Detail("field") != "id" {
		t.Errorf("expected id, got %v", err.Detail("field"))
	}
	if err.Detail("line") != 42 {
		t.Errorf("expected 42, got %v", err.Detail("line"))
	}
	if err.Detail("absent") != nil {
		t.Error("expected nil for absent detail")
	}
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeUnsupportedFile, "bad extension")
	if !IsType(err, ErrorTypeUnsupportedFile) {
		t.Error("expected type match")
	}
	if IsType(err, ErrorTypeValidation) {
		t.Error("expected type mismatch")
	}

	wrapped := fmt.Errorf("context: %w", err)
	if !IsType(wrapped, ErrorTypeUnsupportedFile) {
		t.Error("expected type match through a wrap chain")
	}

	if IsType(errors.New("plain"), ErrorTypeInternal) {
		t.Error("plain errors have no type")
	}
}

func TestIsFatal(t *testing.T) {
	fatal := []ErrorType{
		ErrorTypeUnsupportedFile,
		ErrorTypeTransformNotFound,
		ErrorTypeTransformParse,
		ErrorTypeCoercion,
		ErrorTypeExpression,
		ErrorTypeConfig,
		ErrorTypeFile,
		ErrorTypeSink,
		ErrorTypeInternal,
	}
	for _, typ := range fatal {
		if !IsFatal(New(typ, "x")) {
			t.Errorf("expected %s to be fatal", typ)
		}
	}

	if IsFatal(New(ErrorTypeValidation, "missing field")) {
		t.Error("validation errors must be recoverable")
	}

	if !IsFatal(errors.New("plain")) {
		t.Error("untyped errors default to fatal")
	}
}
