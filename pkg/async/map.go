package async

import (
	"context"
	"log"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Map runs fn over every item using a fixed pool of workers and returns
// the merged results plus a flag reporting whether every item was
// processed. Workers keep private result buffers that are merged only
// after join, so the merged set never depends on scheduling order.
//
// On context cancellation workers stop taking new items; in-flight calls
// get up to grace to finish before being abandoned, and the flag comes
// back false.
func Map[T, R any](ctx context.Context, workers int, grace time.Duration, items []T, fn func(context.Context, T) []R) ([]R, bool) {
	if len(items) == 0 {
		return nil, true
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(items) {
		workers = len(items)
	}

	type workerState struct {
		buf []R
	}

	var next, processed atomic.Int64
	states := make([]*workerState, workers)
	doneCh := make(chan int, workers)

	for w := 0; w < workers; w++ {
		states[w] = &workerState{}
		go func(id int, st *workerState) {
			defer func() { doneCh <- id }()
			for {
				if ctx.Err() != nil {
					return
				}
				i := next.Add(1) - 1
				if i >= int64(len(items)) {
					return
				}
				st.buf = append(st.buf, runUnit(ctx, items[i], fn)...)
				processed.Add(1)
			}
		}(w, states[w])
	}

	// Join all workers; once the context is cancelled, keep joining only
	// for the grace period.
	collected := make([]bool, workers)
	joined := 0
	var graceCh <-chan time.Time
join:
	for joined < workers {
		if graceCh == nil {
			select {
			case id := <-doneCh:
				collected[id] = true
				joined++
			case <-ctx.Done():
				t := time.NewTimer(grace)
				defer t.Stop()
				graceCh = t.C
			}
		} else {
			select {
			case id := <-doneCh:
				collected[id] = true
				joined++
			case <-graceCh:
				break join
			}
		}
	}

	var out []R
	complete := true
	for w, st := range states {
		if collected[w] {
			out = append(out, st.buf...)
		} else {
			complete = false
		}
	}
	if complete && processed.Load() != int64(len(items)) {
		complete = false
	}
	return out, complete
}

// runUnit guards a worker against a panicking unit function. Unit
// functions are expected to convert their own domain failures; this is
// the last line of defense keeping the pool alive.
func runUnit[T, R any](ctx context.Context, item T, fn func(context.Context, T) []R) (out []R) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[async] panic in unit: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx, item)
}
