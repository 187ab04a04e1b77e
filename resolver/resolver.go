// Package resolver implements member.Resolver on top of package reflect.
//
// Fields are found with reflect.Type.FieldByName, so promoted fields of
// embedded structs are visible and unexported fields are readable and, on
// addressable values, writable. Properties are getter methods named after the
// property (or prefixed with Get), paired with an optional Set-prefixed
// setter. Static members and nested types are not discoverable by reflection
// and come from a Registry.
package resolver

import (
	"log/slog"
	"os"
	"reflect"

	"github.com/podhmo/go-traverse/member"
)

var errorType = reflect.TypeFor[error]()

// Resolver is a reflection-based member.Resolver.
// It is safe for concurrent use.
type Resolver struct {
	registry *Registry
	logger   *slog.Logger
}

var _ member.Resolver = (*Resolver)(nil)

// Option is a functional option for configuring the Resolver.
type Option func(*Resolver)

// WithRegistry sets the registry of static members and nested types.
func WithRegistry(registry *Registry) Option {
	return func(r *Resolver) {
		r.registry = registry
	}
}

// WithLogger sets the logger for the resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a new Resolver.
func New(options ...Option) *Resolver {
	r := &Resolver{}
	for _, option := range options {
		option(r)
	}
	if r.registry == nil {
		r.registry = NewRegistry()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return r
}

// Registry returns the registry consulted for static members and nested types.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Version reports the version of the registry, which is all that can change
// the answers of r.
func (r *Resolver) Version() uint64 {
	return r.registry.Version()
}

// ResolveField finds an instance field of t (or of *t's element) by name,
// falling back to a registered static field.
func (r *Resolver) ResolveField(t reflect.Type, name string) (member.Descriptor, bool) {
	if t == nil {
		return nil, false
	}
	st := indirect(t)
	if st.Kind() == reflect.Struct {
		if sf, ok := st.FieldByName(name); ok {
			return &fieldInfo{declaring: st, field: sf}, true
		}
	}
	if ptr, ok := r.registry.staticField(t, name); ok {
		return &staticFieldInfo{declaring: st, name: name, ptr: ptr}, true
	}
	r.logger.Debug("field not found", slog.String("type", t.String()), slog.String("name", name))
	return nil, false
}

// ResolveProperty finds a getter named name or "Get"+name on t.
// The getter must return one value, or one value and an error.
func (r *Resolver) ResolveProperty(t reflect.Type, name string) (member.Descriptor, bool) {
	if t == nil {
		return nil, false
	}
	for _, getter := range []string{name, "Get" + name} {
		m, ok := t.MethodByName(getter)
		if !ok {
			continue
		}
		ft := methodFuncType(t, m)
		valueType, ok := getterValueType(ft)
		if !ok {
			continue
		}
		p := &propertyInfo{
			declaring: t,
			name:      name,
			getter:    getter,
			index:     funcParams(ft, 0),
			valueType: valueType,
		}
		if setterMatches(t, "Set"+name, p) {
			p.setter = "Set" + name
		}
		return p, true
	}
	r.logger.Debug("property not found", slog.String("type", t.String()), slog.String("name", name))
	return nil, false
}

// ResolveMethod finds a method of t whose parameters accept sig.
// Exact matches win over assignable ones, and instance methods are tried
// before registered static methods.
func (r *Resolver) ResolveMethod(t reflect.Type, name string, sig member.Signature) (member.Descriptor, bool) {
	if t == nil {
		return nil, false
	}
	var candidates []member.Descriptor
	if m, ok := t.MethodByName(name); ok {
		ft := methodFuncType(t, m)
		candidates = append(candidates, &methodInfo{declaring: t, name: name, params: funcParams(ft, 0), variadic: ft.IsVariadic()})
	}
	for _, fn := range r.registry.staticOverloads(t, name) {
		ft := fn.Type()
		candidates = append(candidates, &staticMethodInfo{declaring: indirect(t), name: name, fn: fn, params: funcParams(ft, 0), variadic: ft.IsVariadic()})
	}

	for _, c := range candidates {
		if params, _ := methodShape(c); params.Equal(sig) {
			return c, true
		}
	}
	for _, c := range candidates {
		if params, variadic := methodShape(c); accepts(params, variadic, sig) {
			return c, true
		}
	}
	r.logger.Debug("method not found", slog.String("type", t.String()), slog.String("name", name), slog.String("signature", sig.String()))
	return nil, false
}

// InnerType returns the type registered under name for t, either nested
// explicitly or declared in the same package.
func (r *Resolver) InnerType(t reflect.Type, name string) (reflect.Type, bool) {
	if t == nil {
		return nil, false
	}
	return r.registry.innerType(t, name)
}

// ArgumentShapes returns the dynamic types of args. Untyped nils have no shape.
func (r *Resolver) ArgumentShapes(args []any) member.Signature {
	sig := make(member.Signature, len(args))
	for i, arg := range args {
		sig[i] = reflect.TypeOf(arg) // nil for untyped nil
	}
	return sig
}

// methodFuncType returns the function type of m without its receiver.
// Methods obtained from interface types carry no receiver parameter.
func methodFuncType(t reflect.Type, m reflect.Method) reflect.Type {
	if t.Kind() == reflect.Interface {
		return m.Type
	}
	ft := m.Type
	in := make([]reflect.Type, 0, ft.NumIn()-1)
	for i := 1; i < ft.NumIn(); i++ {
		in = append(in, ft.In(i))
	}
	out := make([]reflect.Type, 0, ft.NumOut())
	for i := 0; i < ft.NumOut(); i++ {
		out = append(out, ft.Out(i))
	}
	return reflect.FuncOf(in, out, ft.IsVariadic())
}

func getterValueType(ft reflect.Type) (reflect.Type, bool) {
	if ft.IsVariadic() {
		return nil, false
	}
	switch ft.NumOut() {
	case 1:
		if ft.Out(0) != errorType {
			return ft.Out(0), true
		}
	case 2:
		if ft.Out(1) == errorType {
			return ft.Out(0), true
		}
	}
	return nil, false
}

// setterMatches reports whether the method name on t takes p's index followed
// by a value of p's type, and returns nothing or an error.
func setterMatches(t reflect.Type, name string, p *propertyInfo) bool {
	m, ok := t.MethodByName(name)
	if !ok {
		return false
	}
	ft := methodFuncType(t, m)
	if ft.IsVariadic() || ft.NumIn() != len(p.index)+1 {
		return false
	}
	params := funcParams(ft, 0)
	if !params[:len(p.index)].Equal(p.index) || params[len(p.index)] != p.valueType {
		return false
	}
	switch ft.NumOut() {
	case 0:
		return true
	case 1:
		return ft.Out(0) == errorType
	}
	return false
}

func methodShape(d member.Descriptor) (member.Signature, bool) {
	switch m := d.(type) {
	case *methodInfo:
		return m.params, m.variadic
	case *staticMethodInfo:
		return m.params, m.variadic
	}
	return nil, false
}

// accepts reports whether arguments shaped as sig can be passed to params.
func accepts(params member.Signature, variadic bool, sig member.Signature) bool {
	if !variadic {
		if len(sig) != len(params) {
			return false
		}
		for i := range sig {
			if !acceptsArg(params[i], sig[i]) {
				return false
			}
		}
		return true
	}

	fixed := len(params) - 1
	if len(sig) < fixed {
		return false
	}
	for i := 0; i < fixed; i++ {
		if !acceptsArg(params[i], sig[i]) {
			return false
		}
	}
	// A slice in the variadic position is passed as the whole slice.
	if len(sig) == len(params) && sig[fixed] != nil && sig[fixed].AssignableTo(params[fixed]) {
		return true
	}
	elem := params[fixed].Elem()
	for _, a := range sig[fixed:] {
		if !acceptsArg(elem, a) {
			return false
		}
	}
	return true
}

func acceptsArg(param, arg reflect.Type) bool {
	if arg == nil {
		return nillable(param)
	}
	return arg.AssignableTo(param)
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}
