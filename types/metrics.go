package types

import "time"

// This file defines how the pool reports what it is doing.

/*
Metrics is an interface that defines what the pool wants to measure.
Each method represents an event in the pool lifecycle and receives the
resource name, so implementations can break numbers down per resource.
*/
type Metrics interface {

	// Hit is called when a get is answered from one of the tiers.
	Hit(resource string)

	// Miss is called when a get has to run the resource's hook.
	Miss(resource string)

	// Eviction is called for every entry dropped from the unpinned tier
	// because it went over capacity.
	Eviction(resource string)

	// Duplicate is called when a name is registered a second time.
	Duplicate(resource string)

	// HookDone is called after every hook invocation with its wall time.
	// err is the hook's error, nil on success.
	HookDone(resource string, d time.Duration, err error)
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

Not every user of the pool cares about metrics, and we still want the pool
to work without nil checks on the hot path.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit(string)                             {}
func (NoopMetrics) Miss(string)                            {}
func (NoopMetrics) Eviction(string)                        {}
func (NoopMetrics) Duplicate(string)                       {}
func (NoopMetrics) HookDone(string, time.Duration, error) {}
