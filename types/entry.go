package types

import "time"

// Entry is one computed resource. Value is whatever the hook returned;
// the pool never looks inside it.
type Entry struct {
	Key       Key
	Value     any
	CreatedAt time.Time
	Pinned    bool
}
