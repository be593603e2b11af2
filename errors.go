package resourcepool

import (
	"errors"
	"strings"

	"github.com/cohmetrix/resource-pool/types"
)

// Construction Errors

// ErrInvalidCapacity is returned by New when the unpinned capacity is negative.
var ErrInvalidCapacity = errors.New("invalid cache capacity")

// Registration Errors

// ErrInvalidName is returned when registering an empty resource name.
var ErrInvalidName = errors.New("invalid resource name")

// ErrNilHook is returned when registering a nil hook.
var ErrNilHook = errors.New("nil resource hook")

// Lookup Errors
//
// These are caller errors. Retrying the same call gives the same result.

// ErrResourceNotRegistered is returned by Get for a name nobody registered.
// No hook runs in that case.
var ErrResourceNotRegistered = errors.New("resource not registered")

// ErrUnexpectedType is returned by Resolve when the cached value does not
// have the requested type.
var ErrUnexpectedType = errors.New("unexpected resource type")

// ErrTooManyArguments and ErrUnhashableArgument reject argument tuples that
// cannot be turned into a key.
var (
	ErrTooManyArguments   = types.ErrTooManyArguments
	ErrUnhashableArgument = types.ErrUnhashableArgument
)

// Dependency Errors

// ErrCyclicDependency is matched by every *CycleError.
var ErrCyclicDependency = errors.New("cyclic resource dependency")

// ErrHookPanicked is handed to goroutines that were waiting on a hook that panicked.
// The goroutine that ran the hook gets the panic itself.
var ErrHookPanicked = errors.New("resource hook panicked")

// Lifecycle Errors

// ErrPoolClosed is returned by every operation on a closed pool, including a second Close.
var ErrPoolClosed = errors.New("resource pool is closed")

// CycleError reports a resource that was requested again while it was
// still being computed by the same call chain.
type CycleError struct {
	// Chain lists the keys from the outermost request to the repeated one.
	Chain []types.Key
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, k := range e.Chain {
		parts[i] = k.String()
	}
	return ErrCyclicDependency.Error() + ": " + strings.Join(parts, " -> ")
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicDependency
}
