package eviction

/*
This file defines how a bounded tier decides what to remove when it runs out of space.
*/

/*
Policy is the interface eviction strategies must follow.

The tier does NOT care how eviction works internally.
It only calls these methods, always under its own lock.
*/
type Policy[K comparable] interface {

	// OnGet is called whenever a key is read from the tier.
	//
	// FIFO ignores reads: insertion order is the only thing that counts.
	OnGet(K)

	// OnPut is called whenever a key is added to the tier.
	OnPut(K)

	// Remove is called when a key is explicitly removed (not evicted).
	Remove(K)

	// Evict is called when the tier is over capacity.
	// It returns the key to drop and false when nothing is tracked.
	Evict() (K, bool)

	// Len is the number of tracked keys.
	Len() int
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// FIFO (First In First Out): evicts the oldest inserted key, regardless of access.
	FIFO PolicyType = "FIFO"
)

// New is a small factory function.
// Given a PolicyType, it creates the correct eviction policy.
func New[K comparable](t PolicyType) Policy[K] {
	switch t {
	case FIFO:
		return newFIFO[K]()
	default:
		panic("unknown eviction policy")
	}
}
