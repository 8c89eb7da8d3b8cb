package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-wavelet/internal/simdops"
)

// scheduler splits independent 1-D jobs (rows, columns, batch elements)
// across workers. Each worker owns a workspace, so results are identical to
// sequential execution.
type scheduler[F simdops.Float] struct {
	parallel bool
	workers  int
	seq      *Workspace[F]
}

func newScheduler[F simdops.Float](parallel bool, workers int) *scheduler[F] {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &scheduler[F]{parallel: parallel, workers: workers, seq: NewWorkspace[F]()}
}

// forEach calls fn(i, ws) for every i in [0, n). It stops early when ctx is
// cancelled and returns the context's error.
func (s *scheduler[F]) forEach(ctx context.Context, n int, fn func(i int, ws *Workspace[F])) error {
	workers := min(s.workers, n/minRowsPerWorker)
	if !s.parallel || workers < 2 {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i, s.seq)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			ws := NewWorkspace[F]()
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				fn(i, ws)
			}
			return nil
		})
	}
	return g.Wait()
}
