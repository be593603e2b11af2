package tier

import (
	"github.com/cohmetrix/resource-pool/eviction"
	"github.com/cohmetrix/resource-pool/types"
)

/*
Bounded is the unpinned tier: a map plus an eviction policy, holding at
most capacity entries.

It is NOT safe for concurrent use on its own. The pool guards it with the
same mutex that guards its in-flight bookkeeping, because lookup and insert
have to be atomic with respect to that bookkeeping anyway.
*/
type Bounded struct {
	capacity int
	entries  map[types.Key]*types.Entry
	policy   eviction.Policy[types.Key]
}

// NewBounded creates a tier holding at most capacity entries.
// capacity must be >= 0; the pool validates it before getting here.
func NewBounded(capacity int, policy eviction.PolicyType) *Bounded {
	return &Bounded{
		capacity: capacity,
		entries:  make(map[types.Key]*types.Entry),
		policy:   eviction.New[types.Key](policy),
	}
}

func (b *Bounded) Get(k types.Key) (*types.Entry, bool) {
	ent, ok := b.entries[k]
	if ok {
		b.policy.OnGet(k)
	}
	return ent, ok
}

/*
Put stores the entry, then evicts from the front of the queue until the tier
is back within capacity. The evicted entries may be unrelated to the one just
inserted: only insertion order matters.
*/
func (b *Bounded) Put(ent *types.Entry) []types.Key {
	if _, ok := b.entries[ent.Key]; !ok {
		b.policy.OnPut(ent.Key)
	}
	b.entries[ent.Key] = ent

	var evicted []types.Key
	for len(b.entries) > b.capacity {
		k, ok := b.policy.Evict()
		if !ok {
			break
		}
		delete(b.entries, k)
		evicted = append(evicted, k)
	}
	return evicted
}

func (b *Bounded) Len() int { return len(b.entries) }

// Capacity is the configured bound C.
func (b *Bounded) Capacity() int { return b.capacity }

func (b *Bounded) Values() []any {
	out := make([]any, 0, len(b.entries))
	for _, ent := range b.entries {
		out = append(out, ent.Value)
	}
	return out
}

func (b *Bounded) Clear() {
	for k := range b.entries {
		b.policy.Remove(k)
	}
	b.entries = make(map[types.Key]*types.Entry)
}
