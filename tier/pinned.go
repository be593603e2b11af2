package tier

import (
	"sync"
	"sync/atomic"

	"github.com/cohmetrix/resource-pool/types"
)

/*
Pinned is the append-only tier.

It is a Copy-On-Write map:
- Readers always see an immutable snapshot, without locks
- Writers copy the map, add the entry and swap the snapshot atomically

This fits pinned resources well: they are read on every metric of every
text and written roughly once per resource per run.
*/
type Pinned struct {
	// data holds a map[types.Key]*types.Entry snapshot.
	data atomic.Value

	// writeMu serializes writers so no insert is lost between load and swap.
	writeMu sync.Mutex
}

func NewPinned() *Pinned {
	p := &Pinned{}
	p.data.Store(make(map[types.Key]*types.Entry))
	return p
}

func (p *Pinned) snapshot() map[types.Key]*types.Entry {
	return p.data.Load().(map[types.Key]*types.Entry)
}

// Get is lock-free.
func (p *Pinned) Get(k types.Key) (*types.Entry, bool) {
	ent, ok := p.snapshot()[k]
	return ent, ok
}

/*
Put adds an entry. An entry already stored under the same key is kept:
pinned entries are never replaced or removed while the tier is alive.
Nothing is ever evicted, so the returned slice is always nil.
*/
func (p *Pinned) Put(ent *types.Entry) []types.Key {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	old := p.snapshot()
	if _, ok := old[ent.Key]; ok {
		return nil
	}

	n := make(map[types.Key]*types.Entry, len(old)+1)
	for k, v := range old {
		n[k] = v
	}
	n[ent.Key] = ent

	p.data.Store(n)
	return nil
}

func (p *Pinned) Len() int {
	return len(p.snapshot())
}

func (p *Pinned) Values() []any {
	m := p.snapshot()
	out := make([]any, 0, len(m))
	for _, ent := range m {
		out = append(out, ent.Value)
	}
	return out
}

// Clear releases the tier at the end of the pool's life.
func (p *Pinned) Clear() {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.data.Store(make(map[types.Key]*types.Entry))
}
