package member

import (
	"reflect"
	"testing"
)

func TestSignature_String(t *testing.T) {
	tests := []struct {
		name string
		sig  Signature
		want string
	}{
		{name: "empty", sig: nil, want: "()"},
		{name: "single", sig: Signature{reflect.TypeFor[int]()}, want: "(int)"},
		{name: "multiple", sig: Signature{reflect.TypeFor[int](), reflect.TypeFor[[]string]()}, want: "(int, []string)"},
		{name: "unknown shape", sig: Signature{nil, reflect.TypeFor[error]()}, want: "(nil, error)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sig.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSignature_Equal(t *testing.T) {
	intT := reflect.TypeFor[int]()
	strT := reflect.TypeFor[string]()

	if !(Signature{intT, strT}).Equal(Signature{intT, strT}) {
		t.Error("identical signatures should be equal")
	}
	if (Signature{intT, strT}).Equal(Signature{strT, intT}) {
		t.Error("order must matter")
	}
	if (Signature{intT}).Equal(Signature{intT, intT}) {
		t.Error("length must matter")
	}
	if !Signature(nil).Equal(Signature{}) {
		t.Error("nil and empty signatures should be equal")
	}
}

func TestKind_String(t *testing.T) {
	if got := PropertyKind.String(); got != "property" {
		t.Errorf("PropertyKind.String() = %q", got)
	}
	if got := Kind(42).String(); got != "unknown" {
		t.Errorf("Kind(42).String() = %q", got)
	}
}
