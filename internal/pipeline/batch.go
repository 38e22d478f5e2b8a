package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/orderlens/internal/model"
)

// BatchItem is the outcome of one file in a batch.
type BatchItem struct {
	Err    error
	Result *model.ProfileInferenceResult
	Path   string
	Index  int
}

// RunBatch runs every path with at most concurrency runs in flight. done is
// called once per path as it finishes, possibly from several goroutines at
// once. A failing file does not stop the batch; only context cancellation
// does. The returned items are in input order.
func (p *Pipeline) RunBatch(ctx context.Context, paths []string, concurrency int, done func(BatchItem)) ([]BatchItem, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	items := make([]BatchItem, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i] = BatchItem{Index: i, Path: path, Err: err}
				return err
			}
			result, err := p.RunFile(gctx, path)
			items[i] = BatchItem{Index: i, Path: path, Result: result, Err: err}
			if done != nil {
				done(items[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return items, err
	}
	return items, ctx.Err()
}
