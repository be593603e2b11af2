package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// MaxArgs is the largest argument tuple a key can hold.
const MaxArgs = 8

var (
	// ErrTooManyArguments is returned when a call passes more than MaxArgs arguments.
	ErrTooManyArguments = errors.New("too many resource arguments")

	// ErrUnhashableArgument is returned when an argument cannot be compared with ==
	// (slices, maps, funcs, or structs holding them).
	ErrUnhashableArgument = errors.New("resource argument is not comparable")
)

/*
Key identifies one cache entry: the resource name plus its argument tuple.

The tuple is stored in a fixed-size array so the whole Key stays comparable
and can be used directly as a map key. Two keys are equal iff the name
matches, the arity matches and every argument is == to its counterpart.
*/
type Key struct {
	Name string
	n    int
	args [MaxArgs]any
}

// NewKey normalizes (name, args) into a Key.
func NewKey(name string, args ...any) (Key, error) {
	if len(args) > MaxArgs {
		return Key{}, fmt.Errorf("%w: %q got %d, max %d", ErrTooManyArguments, name, len(args), MaxArgs)
	}

	k := Key{Name: name, n: len(args)}
	for i, a := range args {
		// a nil interface is comparable; reflect.ValueOf(nil) is the zero Value
		if a != nil && !reflect.ValueOf(a).Comparable() {
			return Key{}, fmt.Errorf("%w: %q argument %d has type %T", ErrUnhashableArgument, name, i, a)
		}
		k.args[i] = a
	}
	return k, nil
}

// Args returns a copy of the argument tuple.
func (k Key) Args() []any {
	out := make([]any, k.n)
	copy(out, k.args[:k.n])
	return out
}

// Arity is the number of arguments in the tuple.
func (k Key) Arity() int { return k.n }

func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.Name)
	b.WriteByte('(')
	for i := 0; i < k.n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%T", k.args[i])
	}
	b.WriteByte(')')
	return b.String()
}
