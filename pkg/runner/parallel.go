package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"digital.vasic.specs/pkg/logging"
	"digital.vasic.specs/pkg/spec"
)

// runParallel spreads the top-level units of plan over at most
// r.parallel goroutines. Each unit runs sequentially on its own
// worker, so scratch pads are never shared. Results come back in
// declaration order.
func (r *DefaultRunner) runParallel(
	ctx context.Context,
	runID string,
	log logging.Logger,
	plan []planned,
) ([]*spec.Result, error) {
	type unit struct {
		positions []int
	}

	var units []*unit
	byGroup := make(map[*spec.Group]*unit)
	for pos, p := range plan {
		key := spec.Unit(p.example)
		u, ok := byGroup[key]
		if !ok {
			u = &unit{}
			byGroup[key] = u
			units = append(units, u)
		}
		u.positions = append(u.positions, pos)
	}

	slots := make([]*spec.Result, len(plan))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)

	for _, u := range units {
		g.Go(func() error {
			w := newWorker()
			for _, pos := range u.positions {
				if err := gctx.Err(); err != nil {
					return err
				}
				res := r.execute(gctx, runID, log, plan[pos], w)
				slots[pos] = res
				r.emit(res)
			}
			return nil
		})
	}

	err := g.Wait()

	results := make([]*spec.Result, 0, len(plan))
	for _, res := range slots {
		if res != nil {
			results = append(results, res)
		}
	}
	return results, err
}
