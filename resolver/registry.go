package resolver

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"golang.org/x/mod/module"
)

var (
	// ErrAmbiguousMember is returned when a registration would make an
	// instance member and a static member share a name on the same type.
	ErrAmbiguousMember = errors.New("ambiguous instance and static member")
	// ErrAlreadyRegistered is returned when the same name is registered twice.
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrInvalidRegistration is returned for registrations with unusable values.
	ErrInvalidRegistration = errors.New("invalid registration")
)

type memberKey struct {
	typ  reflect.Type
	name string
}

type packageKey struct {
	pkgPath string
	name    string
}

// Registry holds what reflection cannot discover on its own: package-level
// variables and functions that act as static members of a type, and the
// types reachable from a type by name.
// It is safe for concurrent use. Every successful registration bumps the
// registry's version, so caches of earlier lookups can tell they are stale.
type Registry struct {
	version atomic.Uint64

	mu            sync.RWMutex
	staticFields  map[memberKey]reflect.Value   // value is a pointer to the variable
	staticMethods map[memberKey][]reflect.Value // overloads, in registration order
	inner         map[memberKey]reflect.Type
	packageTypes  map[packageKey]reflect.Type
}

// NewRegistry creates a new, empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		staticFields:  make(map[memberKey]reflect.Value),
		staticMethods: make(map[memberKey][]reflect.Value),
		inner:         make(map[memberKey]reflect.Type),
		packageTypes:  make(map[packageKey]reflect.Type),
	}
}

// RegisterStaticField binds the variable pointed to by ptr as a static field
// of t. Registering a name that t already has as an instance field is an error.
func (r *Registry) RegisterStaticField(t reflect.Type, name string, ptr any) error {
	if t == nil || name == "" {
		return fmt.Errorf("static field %q: %w: type and name are required", name, ErrInvalidRegistration)
	}
	pv := reflect.ValueOf(ptr)
	if pv.Kind() != reflect.Pointer || pv.IsNil() {
		return fmt.Errorf("static field %s.%s: %w: storage must be a non-nil pointer, got %T", t, name, ErrInvalidRegistration, ptr)
	}
	st := indirect(t)
	if st.Kind() == reflect.Struct {
		if _, ok := st.FieldByName(name); ok {
			return fmt.Errorf("static field %s.%s: %w", t, name, ErrAmbiguousMember)
		}
	}

	key := memberKey{typ: st, name: name}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.staticFields[key]; ok {
		return fmt.Errorf("static field %s.%s: %w", t, name, ErrAlreadyRegistered)
	}
	r.staticFields[key] = pv
	r.version.Add(1)
	return nil
}

// RegisterStaticMethod binds fn as a static method of t. Several functions
// may be registered under one name as long as their parameter lists differ.
func (r *Registry) RegisterStaticMethod(t reflect.Type, name string, fn any) error {
	if t == nil || name == "" {
		return fmt.Errorf("static method %q: %w: type and name are required", name, ErrInvalidRegistration)
	}
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return fmt.Errorf("static method %s.%s: %w: want a non-nil func, got %T", t, name, ErrInvalidRegistration, fn)
	}
	st := indirect(t)
	if _, ok := st.MethodByName(name); ok {
		return fmt.Errorf("static method %s.%s: %w", t, name, ErrAmbiguousMember)
	}
	if _, ok := reflect.PointerTo(st).MethodByName(name); ok {
		return fmt.Errorf("static method %s.%s: %w", t, name, ErrAmbiguousMember)
	}

	params := funcParams(fv.Type(), 0)
	key := memberKey{typ: st, name: name}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.staticMethods[key] {
		if funcParams(existing.Type(), 0).Equal(params) && existing.Type().IsVariadic() == fv.Type().IsVariadic() {
			return fmt.Errorf("static method %s.%s%s: %w", t, name, params, ErrAlreadyRegistered)
		}
	}
	r.staticMethods[key] = append(r.staticMethods[key], fv)
	r.version.Add(1)
	return nil
}

// RegisterInner makes inner reachable from outer under name.
func (r *Registry) RegisterInner(outer reflect.Type, name string, inner reflect.Type) error {
	if outer == nil || inner == nil || name == "" {
		return fmt.Errorf("inner type %q: %w: outer, inner and name are required", name, ErrInvalidRegistration)
	}
	key := memberKey{typ: indirect(outer), name: name}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inner[key]; ok {
		return fmt.Errorf("inner type %s.%s: %w", outer, name, ErrAlreadyRegistered)
	}
	r.inner[key] = inner
	r.version.Add(1)
	return nil
}

// RegisterTypes records named types under their package, so that any type of
// the same package can reach them by name. Unnamed and predeclared types are
// rejected.
func (r *Registry) RegisterTypes(types ...reflect.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	added := false
	defer func() {
		if added {
			r.version.Add(1)
		}
	}()
	for _, t := range types {
		if t == nil || t.Name() == "" {
			return fmt.Errorf("package type %v: %w: only named types can be registered", t, ErrInvalidRegistration)
		}
		if t.PkgPath() == "" {
			return fmt.Errorf("package type %s: %w: predeclared type %s belongs to no package", t, ErrInvalidRegistration, t.Name())
		}
		if err := module.CheckImportPath(t.PkgPath()); err != nil {
			return fmt.Errorf("package type %s: %w: %w", t, ErrInvalidRegistration, err)
		}
		key := packageKey{pkgPath: t.PkgPath(), name: t.Name()}
		if existing, ok := r.packageTypes[key]; ok {
			if existing != t {
				return fmt.Errorf("package type %s: %w", t, ErrAlreadyRegistered)
			}
			continue
		}
		r.packageTypes[key] = t
		added = true
	}
	return nil
}

// Version returns a number that changes whenever a registration succeeds.
func (r *Registry) Version() uint64 {
	return r.version.Load()
}

func (r *Registry) staticField(t reflect.Type, name string) (reflect.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.staticFields[memberKey{typ: indirect(t), name: name}]
	return v, ok
}

func (r *Registry) staticOverloads(t reflect.Type, name string) []reflect.Value {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fns := r.staticMethods[memberKey{typ: indirect(t), name: name}]
	return append([]reflect.Value(nil), fns...)
}

func (r *Registry) innerType(t reflect.Type, name string) (reflect.Type, bool) {
	st := indirect(t)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if inner, ok := r.inner[memberKey{typ: st, name: name}]; ok {
		return inner, true
	}
	if st.PkgPath() == "" {
		return nil, false
	}
	inner, ok := r.packageTypes[packageKey{pkgPath: st.PkgPath(), name: name}]
	return inner, ok
}

// indirect strips one level of pointer, so that T and *T share members.
func indirect(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}
