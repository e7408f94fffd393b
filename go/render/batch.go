package render

import (
	"runtime"
	"sync"
)

// forEach calls fn(i) for every i in [0, n) on up to limit workers and
// returns once all calls are done. limit <= 0 means one worker per CPU.
func forEach(n, limit int, fn func(i int)) {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	if limit > n {
		limit = n
	}
	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < limit; w++ {
		go func() {
			for i := range work {
				fn(i)
				wg.Done()
			}
		}()
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		work <- i
	}
	close(work)
	wg.Wait()
}

// collect runs fn over in concurrently. Results and errors come back in the
// order of in, whatever order the calls finish in.
func collect[In, Out any](in []In, limit int, fn func(In) (Out, error)) ([]Out, []error) {
	out := make([]Out, len(in))
	errs := make([]error, len(in))
	forEach(len(in), limit, func(i int) {
		out[i], errs[i] = fn(in[i])
	})
	return out, errs
}
