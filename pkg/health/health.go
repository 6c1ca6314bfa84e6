package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Check reports whether one dependency is reachable
type Check func(ctx context.Context) error

// Checks are named dependency checks
type Checks map[string]Check

// Result is the outcome of running every check once
type Result struct {
	Healthy bool
	Errors  map[string]error
}

// Names returns the check names in order
func (c Checks) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes all checks concurrently, each bounded by timeout
func (c Checks) Run(ctx context.Context, timeout time.Duration) Result {
	res := Result{Healthy: true, Errors: make(map[string]error, len(c))}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, check := range c {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			err := check(cctx)

			mu.Lock()
			defer mu.Unlock()
			res.Errors[name] = err
			if err != nil {
				res.Healthy = false
			}
		}()
	}
	wg.Wait()
	return res
}
