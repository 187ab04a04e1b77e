package traverse

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/podhmo/go-traverse/member"
)

var (
	// ErrMissingMethod matches every *MissingMethodError.
	ErrMissingMethod = errors.New("missing method")
	// ErrTypeMismatch is returned when a value cannot be coerced to the requested type.
	ErrTypeMismatch = member.ErrTypeMismatch
)

// MissingMethodError is returned when no method with the requested name
// accepts the requested signature.
type MissingMethodError struct {
	Type      reflect.Type
	Name      string
	Signature member.Signature
}

func (e *MissingMethodError) Error() string {
	return fmt.Sprintf("missing method: %v.%s%s", e.Type, e.Name, e.Signature)
}

// Is makes errors.Is(err, ErrMissingMethod) hold.
func (e *MissingMethodError) Is(target error) bool {
	return target == ErrMissingMethod
}
