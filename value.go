package traverse

import (
	"fmt"
	"reflect"

	"github.com/podhmo/go-traverse/member"
)

// GetValueAs reads the terminal value of t as a T.
// ok is false, with a nil error, when there is no value. Numeric values
// convert across numeric kinds when they fit; any other mismatch, including a
// value out of range for T, is an ErrTypeMismatch.
func GetValueAs[T any](t *Traverse) (value T, ok bool, err error) {
	var zero T
	v, err := t.GetValue()
	if err != nil {
		return zero, false, err
	}
	if v == nil {
		return zero, false, nil
	}
	if tv, ok := v.(T); ok {
		return tv, true, nil
	}

	target := reflect.TypeFor[T]()
	rv := reflect.ValueOf(v)
	if member.IsNumeric(rv.Kind()) && member.IsNumeric(target.Kind()) {
		cv, err := member.ConvertNumeric(rv, target)
		if err != nil {
			return zero, false, err
		}
		return cv.Interface().(T), true, nil
	}
	return zero, false, fmt.Errorf("%w: %s is not %s", ErrTypeMismatch, rv.Type(), target)
}
