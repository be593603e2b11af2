package batch_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	resourcepool "github.com/cohmetrix/resource-pool"
	"github.com/cohmetrix/resource-pool/batch"
	"github.com/cohmetrix/resource-pool/text"
)

func newPool(t *testing.T, shared *atomic.Int64) *resourcepool.Pool {
	t.Helper()
	p, err := resourcepool.New(100)
	require.NoError(t, err)

	p.MustRegister("model", func(context.Context, ...any) (any, error) {
		shared.Add(1)
		return strings.ToUpper, nil
	}, true)
	p.MustRegister("upper", func(ctx context.Context, args ...any) (any, error) {
		f, err := resourcepool.Resolve[func(string) string](ctx, p, "model")
		if err != nil {
			return nil, err
		}
		return f(args[0].(*text.Text).RawContent), nil
	}, false)
	p.MustRegister("words", func(_ context.Context, args ...any) (any, error) {
		t := args[0].(*text.Text)
		if t.RawContent == "" {
			return nil, errors.New("empty text")
		}
		return len(strings.Fields(t.RawContent)), nil
	}, false)
	return p
}

func TestRunResolvesEveryResource(t *testing.T) {
	var loads atomic.Int64
	p := newPool(t, &loads)

	texts := []*text.Text{text.New("um dois"), text.New("três"), text.New("quatro cinco seis")}
	r := batch.Runner{Pool: p, Resources: []string{"upper", "words"}, Workers: 3}

	results, err := r.Run(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, results, 6)

	assert.Same(t, texts[0], results[0].Text)
	assert.Equal(t, "upper", results[0].Resource)
	assert.Equal(t, "UM DOIS", results[0].Value)
	assert.Equal(t, 3, results[5].Value)

	values := batch.Values(results)
	assert.Equal(t, 1, values[texts[1]]["words"])

	// the pinned model is shared by every worker
	assert.Equal(t, int64(1), loads.Load())
}

func TestRunRecordsHookFailures(t *testing.T) {
	var loads atomic.Int64
	p := newPool(t, &loads)

	core, logs := observer.New(zapcore.WarnLevel)
	texts := []*text.Text{text.New(""), text.New("ok")}
	r := batch.Runner{Pool: p, Resources: []string{"words"}, Workers: 2, Logger: zap.New(core)}

	results, err := r.Run(context.Background(), texts)
	require.NoError(t, err)

	assert.EqualError(t, results[0].Err, "empty text")
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 1, logs.FilterMessage("resource unavailable").Len())

	values := batch.Values(results)
	assert.NotContains(t, values, texts[0])
}

func TestRunRejectsUnknownResource(t *testing.T) {
	var loads atomic.Int64
	p := newPool(t, &loads)

	r := batch.Runner{Pool: p, Resources: []string{"words", "nope"}}
	_, err := r.Run(context.Background(), []*text.Text{text.New("a")})
	assert.ErrorIs(t, err, resourcepool.ErrResourceNotRegistered)
}

func TestRunStopsOnCancel(t *testing.T) {
	p, err := resourcepool.New(10)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	p.MustRegister("slow", func(ctx context.Context, _ ...any) (any, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}, false)

	r := batch.Runner{Pool: p, Resources: []string{"slow"}, Workers: 1}
	_, err = r.Run(ctx, []*text.Text{text.New("a"), text.New("b")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunStopsOnClosedPool(t *testing.T) {
	var loads atomic.Int64
	p := newPool(t, &loads)
	require.NoError(t, p.Close())

	r := batch.Runner{Pool: p, Resources: []string{"words"}}
	_, err := r.Run(context.Background(), []*text.Text{text.New("a")})
	assert.ErrorIs(t, err, resourcepool.ErrPoolClosed)
}
