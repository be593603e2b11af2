package resourcepool

import (
	"context"

	"github.com/cohmetrix/resource-pool/types"
)

// frame is one link of the chain of keys a call chain is computing.
// Frames are immutable; a nested Get extends the chain, it never edits it.
type frame struct {
	pool   *Pool
	key    types.Key
	call   *call
	parent *frame
}

type chainKey struct{}

func (p *Pool) withFrame(ctx context.Context, k types.Key, c *call) context.Context {
	parent, _ := ctx.Value(chainKey{}).(*frame)
	return context.WithValue(ctx, chainKey{}, &frame{pool: p, key: k, call: c, parent: parent})
}

func topFrame(ctx context.Context) *frame {
	f, _ := ctx.Value(chainKey{}).(*frame)
	return f
}

// keys lists the chain from the outermost frame down to f.
func (f *frame) keys() []types.Key {
	var chain []types.Key
	for g := f; g != nil; g = g.parent {
		chain = append(chain, g.key)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// checkCycle fails when k is already being computed further up this call chain.
func (p *Pool) checkCycle(ctx context.Context, k types.Key) error {
	top := topFrame(ctx)
	for f := top; f != nil; f = f.parent {
		if f.pool == p && f.key == k {
			return &CycleError{Chain: append(top.keys(), k)}
		}
	}
	return nil
}

/*
waitCycle fails when waiting on c would never end: c's owner is, directly
or through other waiting call chains, waiting on a call this chain owns.

Every chain that blocks on an in-flight call records an edge from each call
it owns to the call it waits for. Edges are only read and written under the
pool mutex.
*/
func (p *Pool) waitCycle(ctx context.Context, c *call) error {
	top := topFrame(ctx)
	owned := make(map[*call]bool)
	for f := top; f != nil; f = f.parent {
		if f.pool == p {
			owned[f.call] = true
		}
	}

	seen := make(map[*call]bool)
	var path []types.Key
	var walk func(*call) bool
	walk = func(cur *call) bool {
		if owned[cur] {
			path = append(path, cur.key)
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		path = append(path, cur.key)
		for next := range cur.waits {
			if walk(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if !walk(c) {
		return nil
	}
	return &CycleError{Chain: append(top.keys(), path...)}
}

// addWaits records that every call this chain owns in p waits on c.
func (p *Pool) addWaits(ctx context.Context, c *call) {
	for f := topFrame(ctx); f != nil; f = f.parent {
		if f.pool != p {
			continue
		}
		if f.call.waits == nil {
			f.call.waits = make(map[*call]int)
		}
		f.call.waits[c]++
	}
}

func (p *Pool) removeWaits(ctx context.Context, c *call) {
	for f := topFrame(ctx); f != nil; f = f.parent {
		if f.pool != p {
			continue
		}
		if f.call.waits[c]--; f.call.waits[c] <= 0 {
			delete(f.call.waits, c)
		}
	}
}
