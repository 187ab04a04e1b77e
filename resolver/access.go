package resolver

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/podhmo/go-traverse/member"
)

// GetValue reads a field or property of recv. recv may be nil for static fields.
func (r *Resolver) GetValue(d member.Descriptor, recv any, index []any) (any, error) {
	switch d := d.(type) {
	case *fieldInfo:
		sv, err := structOf(recv, d.declaring, false)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", d, err)
		}
		fv, err := sv.FieldByIndexErr(d.field.Index)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", d, err)
		}
		return accessible(fv).Interface(), nil
	case *staticFieldInfo:
		return d.ptr.Elem().Interface(), nil
	case *propertyInfo:
		rv, err := receiverOf(recv, d.declaring)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", d, err)
		}
		in, err := coerceArgs(d.index, false, index)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", d, err)
		}
		return results(rv.MethodByName(d.getter).Call(in))
	default:
		return nil, fmt.Errorf("get %v: %w: not a field or property", d, member.ErrTypeMismatch)
	}
}

// SetValue writes value to a field or property of recv.
// Instance fields can only be written through a pointer receiver.
func (r *Resolver) SetValue(d member.Descriptor, recv any, value any, index []any) error {
	switch d := d.(type) {
	case *fieldInfo:
		sv, err := structOf(recv, d.declaring, true)
		if err != nil {
			return fmt.Errorf("set %s: %w", d, err)
		}
		fv, err := sv.FieldByIndexErr(d.field.Index)
		if err != nil {
			return fmt.Errorf("set %s: %w", d, err)
		}
		v, err := coerce(value, d.field.Type)
		if err != nil {
			return fmt.Errorf("set %s: %w", d, err)
		}
		accessible(fv).Set(v)
		return nil
	case *staticFieldInfo:
		target := d.ptr.Elem()
		v, err := coerce(value, target.Type())
		if err != nil {
			return fmt.Errorf("set %s: %w", d, err)
		}
		target.Set(v)
		return nil
	case *propertyInfo:
		if d.setter == "" {
			return fmt.Errorf("set %s: %w: property is read-only", d, member.ErrNotAddressable)
		}
		rv, err := receiverOf(recv, d.declaring)
		if err != nil {
			return fmt.Errorf("set %s: %w", d, err)
		}
		in, err := coerceArgs(append(append(member.Signature{}, d.index...), d.valueType), false, append(append([]any{}, index...), value))
		if err != nil {
			return fmt.Errorf("set %s: %w", d, err)
		}
		_, err = results(rv.MethodByName(d.setter).Call(in))
		return err
	default:
		return fmt.Errorf("set %v: %w: not a field or property", d, member.ErrTypeMismatch)
	}
}

// Invoke calls a method. A trailing error result is returned as is when
// non-nil; otherwise a single result is returned unwrapped, several results
// as []any and no result as nil.
func (r *Resolver) Invoke(d member.Descriptor, recv any, args []any) (any, error) {
	switch d := d.(type) {
	case *methodInfo:
		rv, err := receiverOf(recv, d.declaring)
		if err != nil {
			return nil, fmt.Errorf("invoke %s: %w", d, err)
		}
		in, spread, err := callArgs(d.params, d.variadic, args)
		if err != nil {
			return nil, fmt.Errorf("invoke %s: %w", d, err)
		}
		return call(rv.MethodByName(d.name), in, spread)
	case *staticMethodInfo:
		in, spread, err := callArgs(d.params, d.variadic, args)
		if err != nil {
			return nil, fmt.Errorf("invoke %s: %w", d, err)
		}
		return call(d.fn, in, spread)
	default:
		return nil, fmt.Errorf("invoke %v: %w: not a method", d, member.ErrTypeMismatch)
	}
}

// structOf returns the struct value held (directly or behind one pointer) by
// recv. Reads of non-addressable values work on a copy; writes need an
// addressable value.
func structOf(recv any, st reflect.Type, write bool) (reflect.Value, error) {
	if recv == nil {
		return reflect.Value{}, member.ErrNoReceiver
	}
	v := reflect.ValueOf(recv)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, member.ErrNoReceiver
		}
		v = v.Elem()
	}
	if v.Type() != st {
		return reflect.Value{}, fmt.Errorf("%w: receiver is %s, want %s", member.ErrTypeMismatch, v.Type(), st)
	}
	if !v.CanAddr() {
		if write {
			return reflect.Value{}, fmt.Errorf("%w: pass a pointer to %s", member.ErrNotAddressable, st)
		}
		c := reflect.New(st).Elem()
		c.Set(v)
		v = c
	}
	return v, nil
}

func receiverOf(recv any, t reflect.Type) (reflect.Value, error) {
	if recv == nil {
		return reflect.Value{}, member.ErrNoReceiver
	}
	v := reflect.ValueOf(recv)
	if t.Kind() == reflect.Interface {
		if !v.Type().Implements(t) {
			return reflect.Value{}, fmt.Errorf("%w: %s does not implement %s", member.ErrTypeMismatch, v.Type(), t)
		}
		return v, nil
	}
	if v.Type() != t {
		return reflect.Value{}, fmt.Errorf("%w: receiver is %s, want %s", member.ErrTypeMismatch, v.Type(), t)
	}
	return v, nil
}

// accessible lifts the read-only flag reflect puts on unexported fields.
// fv must be addressable.
func accessible(fv reflect.Value) reflect.Value {
	if fv.CanSet() {
		return fv
	}
	return reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
}

// callArgs prepares args for a call. A variadic function takes its last
// argument as the whole variadic slice when that argument already is one,
// as f(xs...) would; spread reports that case.
func callArgs(params member.Signature, variadic bool, args []any) (in []reflect.Value, spread bool, err error) {
	if variadic && len(args) == len(params) {
		last := args[len(args)-1]
		if last != nil && reflect.TypeOf(last).AssignableTo(params[len(params)-1]) {
			in, err := coerceArgs(params, false, args)
			return in, true, err
		}
	}
	in, err = coerceArgs(params, variadic, args)
	return in, false, err
}

func call(fn reflect.Value, in []reflect.Value, spread bool) (any, error) {
	if spread {
		return results(fn.CallSlice(in))
	}
	return results(fn.Call(in))
}

func coerceArgs(params member.Signature, variadic bool, args []any) ([]reflect.Value, error) {
	fixed := len(params)
	if variadic {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("%w: got %d, want at least %d", member.ErrArgumentCount, len(args), fixed)
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%w: got %d, want %d", member.ErrArgumentCount, len(args), fixed)
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if i < fixed {
			pt = params[i]
		} else {
			pt = params[fixed].Elem()
		}
		v, err := coerce(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

// coerce turns value into a reflect.Value usable as t.
// Numeric values convert across numeric kinds when they fit; anything else
// must be assignable.
func coerce(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		if nillable(t) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: cannot use nil as %s", member.ErrTypeMismatch, t)
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if member.IsNumeric(v.Kind()) && member.IsNumeric(t.Kind()) {
		return member.ConvertNumeric(v, t)
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %s as %s", member.ErrTypeMismatch, v.Type(), t)
}

func results(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}
	return vals, nil
}
