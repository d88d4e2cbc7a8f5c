// Package validation wraps go-playground/validator with depforce error codes.
package validation

import (
	stderrors "errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/depforce/pkg/errors"
)

// validate is a singleton validator instance; it caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("finite", finite); err != nil {
		panic(err)
	}
	return v
}

// finite rejects NaN and infinite floats. gt and lt alone let +Inf through.
func finite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return true
	}
}

// Struct validates v against its `validate` tags and returns an
// INVALID_INPUT error listing every failing field.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		return format(err)
	}
	return nil
}

// Var validates a single value against a tag expression such as "gt=0".
func Var(field string, v any, tag string) error {
	if err := validate.Var(v, tag); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must satisfy %q (got %v)", field, tag, v)
	}
	return nil
}

func format(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "validation failed")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s (got %v)", fe.Namespace(), rule, fe.Value()))
	}
	return errors.New(errors.ErrCodeInvalidInput, "%s", strings.Join(msgs, "; "))
}
