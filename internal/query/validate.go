package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rzpsarthak13/indexserve/internal/core"
)

// Kind is the primitive type expected of a caller-supplied argument.
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
)

// Field is one named argument to validate. Fields are checked in the order
// given; the first failure short-circuits.
type Field struct {
	Name  string
	Value interface{}
	Kind  Kind
}

// Validate checks presence and primitive type of each field before any
// query construction. A nil or blank-after-trim value fails with
// ErrMissingInput; a value of the wrong primitive type fails with
// TypeMismatchError.
func Validate(fields ...Field) error {
	for _, f := range fields {
		if f.Value == nil {
			return fmt.Errorf("%w: %s", core.ErrMissingInput, f.Name)
		}
		if strings.TrimSpace(fmt.Sprintf("%v", f.Value)) == "" {
			return fmt.Errorf("%w: %s", core.ErrMissingInput, f.Name)
		}

		switch f.Kind {
		case KindString:
			if _, ok := f.Value.(string); !ok {
				return &core.TypeMismatchError{
					Field:    f.Name,
					Expected: string(KindString),
					Actual:   typeName(f.Value),
				}
			}
		case KindNumber:
			if !isNumeric(f.Value) {
				return &core.TypeMismatchError{
					Field:    f.Name,
					Expected: string(KindNumber),
					Actual:   typeName(f.Value),
				}
			}
		}
	}
	return nil
}

func isNumeric(v interface{}) bool {
	switch t := v.(type) {
	case int, int32, int64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return err == nil
	default:
		return false
	}
}

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
