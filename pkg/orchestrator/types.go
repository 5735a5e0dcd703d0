package orchestrator

import (
	"context"
	"sync"
)

// Event represents a progress notification pushed to an optional channel.
type Event struct {
	Phase    string // manifest|details|assets|jar|libraries|java|loader|done
	Done     int
	Total    int
	Message  string
	Finished bool
}

// Mode selects how Run reacts to a failing job.
type Mode int

const (
	// FailFast cancels the remaining jobs and returns the first error.
	FailFast Mode = iota
	// CollectAll runs every job and returns all errors combined.
	CollectAll
)

// DefaultLimit caps concurrent jobs when Options.Limit is unset.
const DefaultLimit = 16

// Job is one unit of work run by Run.
type Job[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Result is the outcome of the job at the same index.
type Result[T any] struct {
	Value T
	Err   error
}

// Options control Run execution.
type Options struct {
	Limit    int
	Mode     Mode
	Progress chan<- Event
	Phase    string
	// Label prefixes progress messages, e.g. "Downloaded library".
	Label string
}

// Counter hands out monotonically increasing completion numbers.
type Counter struct {
	mu   sync.Mutex
	done int
}

// Inc increments the counter and returns the new value.
func (c *Counter) Inc() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	return c.done
}

// Value returns the current count.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}
