/*
Package batch resolves a set of resources for many texts against one
shared pool.
*/
package batch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	resourcepool "github.com/cohmetrix/resource-pool"
	"github.com/cohmetrix/resource-pool/api"
	"github.com/cohmetrix/resource-pool/text"
)

// Result is the outcome of one resource for one text.
type Result struct {
	Text     *text.Text
	Resource string
	Value    any
	Err      error
}

// Runner evaluates Resources for every text with at most Workers texts in flight.
type Runner struct {
	Pool      api.Pool
	Resources []string
	Workers   int
	Logger    *zap.Logger
}

/*
Run resolves every resource for every text.

Results are ordered by text, then by resource, in the order given. A hook
failure is recorded in its Result and the batch continues. The run stops
early, returning the first such error, when a resource is not registered,
when ctx is done, or when the pool is closed.
*/
func (r Runner) Run(ctx context.Context, texts []*text.Text) ([]Result, error) {
	if r.Pool == nil {
		return nil, errors.New("batch: nil pool")
	}
	for _, name := range r.Resources {
		if !r.Pool.Registered(name) {
			return nil, fmt.Errorf("%w: %q", resourcepool.ErrResourceNotRegistered, name)
		}
	}

	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]Result, len(texts)*len(r.Resources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, t := range texts {
		g.Go(func() error {
			for j, name := range r.Resources {
				v, err := r.Pool.Get(gctx, name, t)
				if err != nil && fatal(err) {
					return fmt.Errorf("%s for %s: %w", name, t, err)
				}
				if err != nil {
					log.Warn("resource unavailable",
						zap.String("resource", name),
						zap.Stringer("text", t),
						zap.Error(err),
					)
				}
				results[i*len(r.Resources)+j] = Result{Text: t, Resource: name, Value: v, Err: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debug("batch finished", zap.Int("texts", len(texts)), zap.Int("resources", len(r.Resources)))
	return results, nil
}

func fatal(err error) bool {
	return errors.Is(err, resourcepool.ErrResourceNotRegistered) ||
		errors.Is(err, resourcepool.ErrPoolClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Values collects successful results per text and resource.
func Values(results []Result) map[*text.Text]map[string]any {
	out := make(map[*text.Text]map[string]any)
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		m, ok := out[res.Text]
		if !ok {
			m = make(map[string]any)
			out[res.Text] = m
		}
		m[res.Resource] = res.Value
	}
	return out
}
