// Package orchestrator runs batches of jobs with bounded concurrency and reports
// their progress. Every downloading component in lodestone is built on Run.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Send pushes e to ch without blocking. A nil channel or a slow reader drops the event.
func Send(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- e:
	default:
	}
}

// Finish sends the terminal event of an operation.
func Finish(ch chan<- Event, phase, msg string) {
	Send(ch, Event{Phase: phase, Message: msg, Finished: true})
}

// Run executes jobs with at most opts.Limit in flight. Results are returned in job order.
//
// In FailFast mode the first error cancels the context handed to the other jobs,
// jobs that have not started are skipped, and that error is returned. In CollectAll
// mode every job runs and the returned error combines all failures.
func Run[T any](ctx context.Context, jobs []Job[T], opts Options) ([]Result[T], error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	results := make([]Result[T], len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	counter := &Counter{}
	report := func(name string) {
		done := counter.Inc()
		Send(opts.Progress, Event{
			Phase:   opts.Phase,
			Done:    done,
			Total:   len(jobs),
			Message: progressMessage(opts.Label, done, len(jobs), name),
		})
	}

	if opts.Mode == CollectAll {
		return runCollectAll(ctx, jobs, results, limit, report)
	}
	return runFailFast(ctx, jobs, results, limit, report)
}

func runFailFast[T any](ctx context.Context, jobs []Job[T], results []Result[T], limit int, report func(string)) ([]Result[T], error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			v, err := job.Run(gctx)
			results[i] = Result[T]{Value: v, Err: err}
			if err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			report(job.Name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func runCollectAll[T any](ctx context.Context, jobs []Job[T], results []Result[T], limit int, report func(string)) ([]Result[T], error) {
	var g errgroup.Group
	g.SetLimit(limit)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			v, err := job.Run(ctx)
			results[i] = Result[T]{Value: v, Err: err}
			if err == nil {
				report(job.Name)
			}
			return nil
		})
	}
	_ = g.Wait()

	var merr *multierror.Error
	for i, r := range results {
		if r.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", jobs[i].Name, r.Err))
		}
	}
	return results, merr.ErrorOrNil()
}

func progressMessage(label string, done, total int, name string) string {
	if label == "" {
		label = "Downloaded"
	}
	if name == "" {
		return fmt.Sprintf("%s (%d / %d)", label, done, total)
	}
	return fmt.Sprintf("%s (%d / %d) %s", label, done, total, name)
}
