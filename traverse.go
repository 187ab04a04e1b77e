package traverse

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/podhmo/go-traverse/cache"
	"github.com/podhmo/go-traverse/member"
)

// Accessor creates cursors that share one resolver and one lookup cache.
// It is safe for concurrent use.
type Accessor struct {
	resolver member.Resolver
	cache    *cache.AccessCache
	logger   *slog.Logger
}

// New creates a new Accessor configured with options.
func New(options ...Option) (*Accessor, error) {
	c := &Config{}
	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}
	if err := c.complete(); err != nil {
		return nil, err
	}
	return &Accessor{resolver: c.Resolver, cache: c.Cache, logger: c.Logger}, nil
}

// Cache returns the lookup cache used by the accessor.
func (a *Accessor) Cache() *cache.AccessCache {
	return a.cache
}

// Resolver returns the resolver used by the accessor.
func (a *Accessor) Resolver() member.Resolver {
	return a.resolver
}

// Create returns a cursor positioned at root. A nil root, including a nil
// pointer, yields the void cursor.
func (a *Accessor) Create(root any) *Traverse {
	if isNull(root) {
		return a.void()
	}
	return &Traverse{acc: a, root: root, typ: reflect.TypeOf(root)}
}

// CreateType returns a cursor positioned at t with no instance.
func (a *Accessor) CreateType(t reflect.Type) *Traverse {
	if t == nil {
		return a.void()
	}
	return &Traverse{acc: a, typ: t}
}

// CreateFor returns a cursor positioned at the type T with no instance.
func CreateFor[T any](a *Accessor) *Traverse {
	return a.CreateType(reflect.TypeFor[T]())
}

func (a *Accessor) void() *Traverse {
	return &Traverse{acc: a}
}

// Traverse is an immutable position in a chain of member navigations.
// Every navigation returns a new cursor.
//
// A cursor is either void, positioned at a bare type, positioned at an
// instance, or holding a pending member: a field or property that has been
// located but not read yet. Navigating from a pending member reads it first.
//
// Lookups that find nothing degrade to the void cursor, and navigation from
// the void cursor yields the void cursor again. Errors raised while reading a
// pending member on the way are kept by the returned cursor; navigation from
// such a cursor keeps the error, and GetValue, SetValue, Text and Method
// report it.
type Traverse struct {
	acc     *Accessor
	root    any
	typ     reflect.Type
	pending member.Descriptor
	index   []any
	err     error
}

// IsVoid reports whether t is the void cursor.
func (t *Traverse) IsVoid() bool {
	return t.err == nil && t.root == nil && t.typ == nil && t.pending == nil
}

// Err returns the error carried by t, if any.
func (t *Traverse) Err() error {
	return t.err
}

func (t *Traverse) fail(err error) *Traverse {
	return &Traverse{acc: t.acc, err: err}
}

// resolve reads the pending member, if any, and positions a new cursor at its value.
func (t *Traverse) resolve() *Traverse {
	if t.err != nil || t.pending == nil {
		return t
	}
	v, err := t.GetValue()
	if err != nil {
		return t.fail(err)
	}
	return t.acc.Create(v)
}

// GetValue reads the pending member. Without one, it returns the instance,
// or the reflect.Type for a cursor positioned at a bare type, or nil for the
// void cursor.
func (t *Traverse) GetValue() (any, error) {
	if t.err != nil {
		return nil, t.err
	}
	if t.pending != nil {
		return t.acc.resolver.GetValue(t.pending, t.root, t.index)
	}
	if t.root == nil && t.typ != nil {
		return t.typ, nil
	}
	return t.root, nil
}

// SetValue writes value through the pending member.
// Without a pending member there is nothing to write to, and it does nothing.
func (t *Traverse) SetValue(value any) error {
	if t.err != nil {
		return t.err
	}
	if t.pending == nil {
		return nil
	}
	return t.acc.resolver.SetValue(t.pending, t.root, value, t.index)
}

// Type navigates to the type registered under name for the current type.
func (t *Traverse) Type(name string) *Traverse {
	if t.err != nil {
		return t
	}
	if t.typ == nil {
		return t.acc.void()
	}
	inner, ok := t.acc.resolver.InnerType(t.typ, name)
	if !ok {
		t.acc.logger.Debug("inner type not found, degrading to void", slog.Any("type", t.typ), slog.String("name", name))
		return t.acc.void()
	}
	return t.acc.CreateType(inner)
}

// Field navigates to the field called name of the current value. Static
// fields are reachable from a bare type; instance fields need an instance.
func (t *Traverse) Field(name string) *Traverse {
	r := t.resolve()
	if r.err != nil {
		return r
	}
	if r.typ == nil {
		return t.acc.void()
	}
	d, err := t.acc.cache.LookupField(r.typ, name)
	if err != nil {
		t.acc.logger.Debug("field not found, degrading to void", slog.Any("type", r.typ), slog.String("name", name))
		return t.acc.void()
	}
	if !d.IsStatic() && r.root == nil {
		t.acc.logger.Debug("instance field without instance, degrading to void", slog.Any("type", r.typ), slog.String("name", name))
		return t.acc.void()
	}
	return &Traverse{acc: t.acc, root: r.root, typ: r.typ, pending: d}
}

// Property navigates to the property called name of the current value, with
// optional index arguments. Properties are only reachable from an instance,
// static or not.
func (t *Traverse) Property(name string, index ...any) *Traverse {
	r := t.resolve()
	if r.err != nil {
		return r
	}
	if r.root == nil || r.typ == nil {
		return t.acc.void()
	}
	d, err := t.acc.cache.LookupProperty(r.typ, name)
	if err != nil {
		t.acc.logger.Debug("property not found, degrading to void", slog.Any("type", r.typ), slog.String("name", name))
		return t.acc.void()
	}
	return &Traverse{acc: t.acc, root: r.root, typ: r.typ, pending: d, index: append([]any(nil), index...)}
}

// Method calls the method called name on the current value, choosing the
// overload from the dynamic types of args, and returns a cursor positioned at
// its result. It fails with a *MissingMethodError when no overload matches;
// errors returned by the method itself are passed through unmodified.
func (t *Traverse) Method(name string, args ...any) (*Traverse, error) {
	return t.call(name, nil, false, args)
}

// MethodWithTypes is like Method but chooses the overload from paramTypes.
func (t *Traverse) MethodWithTypes(name string, paramTypes []reflect.Type, args ...any) (*Traverse, error) {
	return t.call(name, member.Signature(paramTypes), true, args)
}

func (t *Traverse) call(name string, sig member.Signature, explicit bool, args []any) (*Traverse, error) {
	r := t.resolve()
	if r.err != nil {
		return nil, r.err
	}
	if r.typ == nil {
		return t.acc.void(), nil
	}
	if !explicit {
		sig = t.acc.resolver.ArgumentShapes(args)
	}
	d, ok := t.acc.cache.LookupMethod(r.typ, name, sig)
	if !ok {
		return nil, &MissingMethodError{Type: r.typ, Name: name, Signature: sig}
	}
	v, err := t.acc.resolver.Invoke(d, r.root, args)
	if err != nil {
		return nil, err
	}
	return t.acc.Create(v), nil
}

// Text returns the textual form of the terminal value, formatted with
// fmt.Sprint. ok is false when there is no value, including a nil pointer.
func (t *Traverse) Text() (text string, ok bool, err error) {
	v, err := t.GetValue()
	if err != nil {
		return "", false, err
	}
	if isNull(v) {
		return "", false, nil
	}
	return fmt.Sprint(v), true, nil
}

// String describes the position of the cursor, without reading anything.
func (t *Traverse) String() string {
	switch {
	case t.err != nil:
		return fmt.Sprintf("traverse(error: %v)", t.err)
	case t.IsVoid():
		return "traverse(void)"
	case t.pending != nil:
		return fmt.Sprintf("traverse(%v -> %s)", t.typ, t.pending)
	case t.root == nil:
		return fmt.Sprintf("traverse(type %v)", t.typ)
	default:
		return fmt.Sprintf("traverse(%v)", t.typ)
	}
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
