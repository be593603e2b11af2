package types

import "context"

/*
Hook is the contract between the pool and whatever produces a resource.

It is called when the pool misses:
 1. Pool looks for (name, args) in the right tier → not found
 2. Pool calls the hook with the same args
 3. Hook computes the value (tokenize, tag, open a DB session...)
 4. Pool stores the value in the tier
 5. Pool returns the value

A hook may ask the pool for other resources while it runs. It MUST hand the
ctx it received to those calls: the ctx carries the chain of resources being
computed, which is how the pool notices a dependency cycle.
*/
type Hook func(ctx context.Context, args ...any) (any, error)
