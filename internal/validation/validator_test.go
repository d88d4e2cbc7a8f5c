package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/depforce/pkg/errors"
)

type sample struct {
	Width float64 `validate:"gt=0"`
	Name  string  `validate:"required"`
}

func TestStruct(t *testing.T) {
	if err := Struct(sample{Width: 10, Name: "ok"}); err != nil {
		t.Fatalf("Struct() error = %v", err)
	}

	err := Struct(sample{Width: 0})
	if err == nil {
		t.Fatal("Struct() should fail for zero width and empty name")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
	msg := err.Error()
	if !strings.Contains(msg, "sample.Width") || !strings.Contains(msg, "sample.Name") {
		t.Errorf("message should name both fields: %s", msg)
	}
}

func TestVar(t *testing.T) {
	if err := Var("fps", 30, "gt=0,lte=240"); err != nil {
		t.Errorf("Var() error = %v", err)
	}
	if err := Var("fps", 0, "gt=0"); err == nil {
		t.Error("Var() should reject 0")
	}
}

func TestFinite(t *testing.T) {
	type size struct {
		W float64 `validate:"gt=0,finite"`
	}
	for _, w := range []float64{math.Inf(1), math.NaN()} {
		if err := Struct(size{W: w}); err == nil {
			t.Errorf("Struct(W=%v) accepted a non-finite size", w)
		}
	}
	if err := Struct(size{W: 1e300}); err != nil {
		t.Errorf("Struct(W=1e300) error = %v", err)
	}
	if err := Var("charge", math.Inf(-1), "finite"); err == nil {
		t.Error("Var() accepted -Inf")
	}
}
