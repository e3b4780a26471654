package run

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Sweep runs several independent computations with at most devices of
// them in flight. Run i is placed on device i mod devices, overriding the
// device in its params. All runs are planned before any starts; the first
// failure cancels the rest.
func (c *Coordinator) Sweep(ctx context.Context, runs []Params, devices int) ([]*Outcome, error) {
	if devices < 1 {
		return nil, fmt.Errorf("sweep needs at least one device, got %d", devices)
	}

	plans := make([]*Plan, len(runs))
	seen := make(map[string]int, len(runs))
	for i, p := range runs {
		p.Device = i % devices
		plan, err := c.Plan(p)
		if err != nil {
			return nil, fmt.Errorf("sweep run %d: %w", i, err)
		}
		if j, dup := seen[plan.Rel()]; dup {
			return nil, fmt.Errorf("sweep runs %d and %d both write %s", j, i, plan.Artifact)
		}
		seen[plan.Rel()] = i
		plans[i] = plan
	}

	outcomes := make([]*Outcome, len(plans))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(devices)
	for i, plan := range plans {
		i, plan := i, plan
		g.Go(func() error {
			out, err := c.Run(ctx, plan)
			if err != nil {
				return fmt.Errorf("sweep run %d (%s): %w", i, plan.Tag, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
