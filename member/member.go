// Package member defines the contract between the traversal layer and the
// component that knows how to find and touch fields, properties and methods
// of a Go type.
//
// Descriptors are opaque to callers. They are produced by a Resolver and
// handed back to the same Resolver for reads, writes and invocations.
package member

import (
	"errors"
	"reflect"
	"strings"
)

// Kind defines the category of a member.
type Kind int

const (
	FieldKind Kind = iota
	PropertyKind
	MethodKind
)

func (k Kind) String() string {
	switch k {
	case FieldKind:
		return "field"
	case PropertyKind:
		return "property"
	case MethodKind:
		return "method"
	default:
		return "unknown"
	}
}

var (
	// ErrNotFound is returned when no member with the requested name exists.
	ErrNotFound = errors.New("member not found")
	// ErrNoReceiver is returned when an instance member is touched without an instance.
	ErrNoReceiver = errors.New("instance member requires a receiver")
	// ErrNotAddressable is returned when a write targets a value that cannot be modified in place.
	ErrNotAddressable = errors.New("value is not addressable")
	// ErrTypeMismatch is returned when a value cannot be assigned or converted to the member's type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrArgumentCount is returned when the number of arguments does not match the member's parameters.
	ErrArgumentCount = errors.New("wrong number of arguments")
)

// Descriptor identifies a field, property or method on a specific declaring type.
// Descriptors are immutable once resolved.
type Descriptor interface {
	Kind() Kind
	Name() string
	DeclaringType() reflect.Type
	IsStatic() bool
	String() string
}

// Signature is an ordered list of parameter types.
// A nil element stands for an argument whose shape is unknown (an untyped nil);
// it matches any parameter that can hold nil.
type Signature []reflect.Type

// String renders the signature as "(int, string)".
func (s Signature) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, t := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		if t == nil {
			b.WriteString("nil")
		} else {
			b.WriteString(t.String())
		}
	}
	b.WriteByte(')')
	return b.String()
}

// Equal reports whether two signatures list the same types in the same order.
func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Resolver looks up member descriptors and performs reads, writes and
// invocations through them. Lookups report absence with ok == false rather
// than an error; the operations that touch values return errors raised by
// the target unmodified.
type Resolver interface {
	ResolveField(t reflect.Type, name string) (Descriptor, bool)
	ResolveProperty(t reflect.Type, name string) (Descriptor, bool)
	ResolveMethod(t reflect.Type, name string, sig Signature) (Descriptor, bool)
	InnerType(t reflect.Type, name string) (reflect.Type, bool)

	Invoke(d Descriptor, recv any, args []any) (any, error)
	GetValue(d Descriptor, recv any, index []any) (any, error)
	SetValue(d Descriptor, recv any, value any, index []any) error

	ArgumentShapes(args []any) Signature
}

// Versioned is implemented by resolvers whose answers can change over time.
// Version must change whenever a lookup could give a different answer than
// before; caches drop what they learned under an older version.
type Versioned interface {
	Version() uint64
}
