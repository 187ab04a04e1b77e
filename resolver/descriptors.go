package resolver

import (
	"fmt"
	"reflect"

	"github.com/podhmo/go-traverse/member"
)

// fieldInfo is a struct field, declared or promoted through embedding.
type fieldInfo struct {
	declaring reflect.Type // always a struct type
	field     reflect.StructField
}

func (f *fieldInfo) Kind() member.Kind           { return member.FieldKind }
func (f *fieldInfo) Name() string                { return f.field.Name }
func (f *fieldInfo) DeclaringType() reflect.Type { return f.declaring }
func (f *fieldInfo) IsStatic() bool              { return false }
func (f *fieldInfo) String() string {
	return fmt.Sprintf("field %s.%s %s", f.declaring, f.field.Name, f.field.Type)
}

// staticFieldInfo is a package-level variable registered against a type.
type staticFieldInfo struct {
	declaring reflect.Type
	name      string
	ptr       reflect.Value
}

func (f *staticFieldInfo) Kind() member.Kind           { return member.FieldKind }
func (f *staticFieldInfo) Name() string                { return f.name }
func (f *staticFieldInfo) DeclaringType() reflect.Type { return f.declaring }
func (f *staticFieldInfo) IsStatic() bool              { return true }
func (f *staticFieldInfo) String() string {
	return fmt.Sprintf("static field %s.%s %s", f.declaring, f.name, f.ptr.Type().Elem())
}

// propertyInfo is a getter method with an optional Set-prefixed setter.
// Parameters of the getter are the property's index.
type propertyInfo struct {
	declaring reflect.Type
	name      string
	getter    string
	setter    string // empty when read-only
	index     member.Signature
	valueType reflect.Type
}

func (p *propertyInfo) Kind() member.Kind           { return member.PropertyKind }
func (p *propertyInfo) Name() string                { return p.name }
func (p *propertyInfo) DeclaringType() reflect.Type { return p.declaring }
func (p *propertyInfo) IsStatic() bool              { return false }
func (p *propertyInfo) String() string {
	if len(p.index) > 0 {
		return fmt.Sprintf("property %s.%s[%s] %s", p.declaring, p.name, p.index, p.valueType)
	}
	return fmt.Sprintf("property %s.%s %s", p.declaring, p.name, p.valueType)
}

// methodInfo is an exported method in the method set of declaring.
type methodInfo struct {
	declaring reflect.Type
	name      string
	params    member.Signature
	variadic  bool
}

func (m *methodInfo) Kind() member.Kind           { return member.MethodKind }
func (m *methodInfo) Name() string                { return m.name }
func (m *methodInfo) DeclaringType() reflect.Type { return m.declaring }
func (m *methodInfo) IsStatic() bool              { return false }
func (m *methodInfo) String() string {
	return fmt.Sprintf("method %s.%s%s", m.declaring, m.name, m.params)
}

// staticMethodInfo is a package-level function registered against a type.
type staticMethodInfo struct {
	declaring reflect.Type
	name      string
	fn        reflect.Value
	params    member.Signature
	variadic  bool
}

func (m *staticMethodInfo) Kind() member.Kind           { return member.MethodKind }
func (m *staticMethodInfo) Name() string                { return m.name }
func (m *staticMethodInfo) DeclaringType() reflect.Type { return m.declaring }
func (m *staticMethodInfo) IsStatic() bool              { return true }
func (m *staticMethodInfo) String() string {
	return fmt.Sprintf("static method %s.%s%s", m.declaring, m.name, m.params)
}

// funcParams returns the parameter types of ft, skipping the first skip
// parameters (1 for method expressions, whose first parameter is the receiver).
func funcParams(ft reflect.Type, skip int) member.Signature {
	params := make(member.Signature, 0, ft.NumIn()-skip)
	for i := skip; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i))
	}
	return params
}
