package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cohmetrix/resource-pool/types"
)

type recordingMetrics struct {
	mu        sync.Mutex
	hits      []string
	misses    []string
	evictions []string
	durations []time.Duration
	errs      []error
}

func (m *recordingMetrics) Hit(r string)       { m.mu.Lock(); m.hits = append(m.hits, r); m.mu.Unlock() }
func (m *recordingMetrics) Miss(r string)      { m.mu.Lock(); m.misses = append(m.misses, r); m.mu.Unlock() }
func (m *recordingMetrics) Eviction(r string)  { m.mu.Lock(); m.evictions = append(m.evictions, r); m.mu.Unlock() }
func (m *recordingMetrics) Duplicate(r string) {}
func (m *recordingMetrics) HookDone(r string, d time.Duration, err error) {
	m.mu.Lock()
	m.durations = append(m.durations, d)
	m.errs = append(m.errs, err)
	m.mu.Unlock()
}

func TestNewFillsDefaults(t *testing.T) {
	e := New(nil, nil, nil, nil)

	assert.NotNil(t, e.Metrics)
	assert.NotNil(t, e.Logger)
	assert.NotNil(t, e.Tracer)
	assert.NotNil(t, e.Clock)
}

func TestInvokePassesArgsAndMeasuresWithClock(t *testing.T) {
	clock := clockz.NewFakeClock()
	m := &recordingMetrics{}
	core, logs := observer.New(zapcore.DebugLevel)
	e := New(m, zap.New(core), nil, clock)

	k, err := types.NewKey("len", "abc")
	require.NoError(t, err)

	v, err := e.Invoke(context.Background(), k, func(ctx context.Context, args ...any) (any, error) {
		clock.Advance(250 * time.Millisecond)
		return len(args[0].(string)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	assert.Equal(t, []string{"len"}, m.misses)
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, m.durations)
	assert.Equal(t, []error{nil}, m.errs)

	entries := logs.FilterMessage("calculated resource").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "len", entries[0].ContextMap()["resource"])
}

func TestInvokeReturnsHookErrorUnchanged(t *testing.T) {
	m := &recordingMetrics{}
	e := New(m, nil, nil, nil)
	boom := errors.New("boom")

	k, _ := types.NewKey("parse_trees")
	v, err := e.Invoke(context.Background(), k, func(context.Context, ...any) (any, error) {
		return "partial", boom
	})

	assert.Nil(t, v)
	assert.Same(t, boom, err)
	assert.Equal(t, []error{boom}, m.errs)
}

func TestOnHitAndOnEvict(t *testing.T) {
	m := &recordingMetrics{}
	e := New(m, nil, nil, nil)

	k, _ := types.NewKey("tokens", 1)
	e.OnHit(k)
	e.OnEvict(k)

	assert.Equal(t, []string{"tokens"}, m.hits)
	assert.Equal(t, []string{"tokens"}, m.evictions)
}
