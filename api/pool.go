package api

import (
	"context"

	"github.com/cohmetrix/resource-pool/types"
)

// Accessor is a per-resource shortcut: calling it is exactly Get(ctx, name, args...).
type Accessor func(ctx context.Context, args ...any) (any, error)

/*
Pool defines the PUBLIC API of a resource pool.
Consumers (metrics, the batch runner, hooks themselves) depend on this
contract and receive the pool explicitly; there is no package-level pool.
*/
type Pool interface {

	/*
		Register makes a hook available under name.

		BEHAVIOR:
		---------
		- pinned resources live in a tier that is never evicted
		- everything else lives in the bounded FIFO tier
		- registering an existing name logs a warning and the latest
		  registration wins
	*/
	Register(name string, hook types.Hook, pinned bool) error

	/*
		Get returns the resource identified by (name, args).

		BEHAVIOR:
		---------
		1. If an equal key is cached in the resource's tier:
		   - return the stored value, the hook is NOT called
		2. Otherwise:
		   - call the hook (which may Get other resources)
		   - store the value, evicting the oldest unpinned entries if needed
		   - return the value

		Hook errors come back unchanged and nothing is cached for them.
	*/
	Get(ctx context.Context, name string, args ...any) (any, error)

	// Accessor returns the shortcut built for name at registration time.
	// Only identifier-like names get one.
	Accessor(name string) (Accessor, bool)

	// Registered reports whether name has a hook.
	Registered(name string) bool

	// Names lists registered resources in lexical order.
	Names() []string

	/*
		Close releases both tiers and closes every pinned value that
		implements io.Closer (database sessions and the like).
	*/
	Close() error
}
