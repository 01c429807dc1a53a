package ufo

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// forEach runs fn for every index 0…n-1, fanned out over the given
// number of worker goroutines. Results land in pre-allocated,
// index-addressed slots inside fn, so the outcome is independent of
// scheduling. With workers < 2 the loop runs inline, which is the
// reference behavior the concurrent path must match.
func forEach(n int, workers int, fn func(i int)) {
	if workers > n {
		workers = n
	}
	if workers < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var next int64 = -1
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&next, 1))
				if i >= n {
					return
				}
				fn(i)
			}
		}()
	}
	wg.Wait()
}

// defaultWorkers picks a worker count for glyph file IO.
func defaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}
