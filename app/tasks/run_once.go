package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RunOnce executes every task with at most workers running at a time. A
// failing task does not stop the others; all failures are joined.
func RunOnce(ctx context.Context, tasks []TaskInterface, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	var (
		mu   sync.Mutex
		errs []error
	)

	for _, task := range tasks {
		g.Go(func() error {
			task.Start()
			if err := task.Execute(gctx); err != nil {
				slog.Error("Task failed", "type", string(task.GetType()), "user", task.GetUserName(), "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			// never cancel the siblings
			return nil
		})
	}

	g.Wait()

	return errors.Join(errs...)
}
