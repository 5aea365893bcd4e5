package generator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"codeforge/internal/logging"
)

// GenerateBatch runs requests concurrently, bounded by MaxWorkers.
// Results keep request order. The first error cancels the remaining work.
func (g *Generator) GenerateBatch(ctx context.Context, reqs []Request) ([]*Generated, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	workers := g.cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	logging.Generator("batch of %d requests with %d workers", len(reqs), workers)

	results := make([]*Generated, len(reqs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, req := range reqs {
		i, req := i, req
		eg.Go(func() error {
			result, err := g.Generate(ctx, req)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
