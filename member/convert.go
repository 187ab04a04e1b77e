package member

import (
	"fmt"
	"math"
	"reflect"
)

// IsNumeric reports whether k is an integer or floating-point kind.
func IsNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}

// ConvertNumeric converts the numeric value v to the numeric type t when the
// value fits. Integers must survive exactly, so overflow, a negative value
// going to an unsigned type or a float with a fractional part going to an
// integer type fails with ErrTypeMismatch. Floats going to a narrower float
// type are rounded, but must stay in range.
func ConvertNumeric(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if !IsNumeric(v.Kind()) || !IsNumeric(t.Kind()) {
		return reflect.Value{}, fmt.Errorf("%w: cannot convert %s to %s", ErrTypeMismatch, v.Type(), t)
	}
	out := reflect.New(t).Elem()
	var ok bool
	switch {
	case isInt(v.Kind()):
		ok = setFromInt(out, v.Int())
	case isUint(v.Kind()):
		ok = setFromUint(out, v.Uint())
	default:
		ok = setFromFloat(out, v.Float())
	}
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %v (%s) does not fit in %s", ErrTypeMismatch, v, v.Type(), t)
	}
	return out, nil
}

const (
	twoTo63 = 1 << 63
	twoTo64 = 1 << 64
)

func setFromInt(out reflect.Value, n int64) bool {
	switch k := out.Kind(); {
	case isInt(k):
		if out.OverflowInt(n) {
			return false
		}
		out.SetInt(n)
	case isUint(k):
		if n < 0 || out.OverflowUint(uint64(n)) {
			return false
		}
		out.SetUint(uint64(n))
	default:
		out.SetFloat(float64(n))
		f := out.Float()
		return f >= -twoTo63 && f < twoTo63 && int64(f) == n
	}
	return true
}

func setFromUint(out reflect.Value, u uint64) bool {
	switch k := out.Kind(); {
	case isInt(k):
		if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
			return false
		}
		out.SetInt(int64(u))
	case isUint(k):
		if out.OverflowUint(u) {
			return false
		}
		out.SetUint(u)
	default:
		out.SetFloat(float64(u))
		f := out.Float()
		return f < twoTo64 && uint64(f) == u
	}
	return true
}

func setFromFloat(out reflect.Value, f float64) bool {
	switch k := out.Kind(); {
	case isInt(k):
		if f != math.Trunc(f) || f < -twoTo63 || f >= twoTo63 || out.OverflowInt(int64(f)) {
			return false
		}
		out.SetInt(int64(f))
	case isUint(k):
		if f != math.Trunc(f) || f < 0 || f >= twoTo64 || out.OverflowUint(uint64(f)) {
			return false
		}
		out.SetUint(uint64(f))
	default:
		if out.OverflowFloat(f) {
			return false
		}
		out.SetFloat(f)
	}
	return true
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
