package tier

import "github.com/cohmetrix/resource-pool/types"

/*
This file defines what a "tier" is. The pool keeps computed resources in two
independent tiers:
- Pinned: process-wide singletons (tagger, parser, DB helper). Never evicted.
- Bounded: per-text derived data. At most C entries, oldest dropped first.

Each get goes to exactly one tier, chosen by the pinned flag given when the
resource was registered.
*/

// Tier is the storage a pool uses for one class of resources.
type Tier interface {

	// Get retrieves an entry by key.
	Get(types.Key) (*types.Entry, bool)

	// Put inserts an entry and returns the keys it pushed out, oldest first.
	// The entry just inserted may itself be among them when capacity is 0.
	Put(*types.Entry) []types.Key

	// Len returns how many entries are stored.
	Len() int

	// Values returns every stored value. Used when the pool closes.
	Values() []any

	// Clear drops everything.
	Clear()
}
