package pix

import(
	"runtime"
	"sync"
)

// ParallelRows splits the rows [0,h) across one goroutine per CPU and
// calls fn(y0,y1) on each span. Every pipeline stage is independent
// across rows, so this is the only scheduling primitive we need.
func ParallelRows(h int, fn func(y0, y1 int)) {
	workers := runtime.NumCPU()
	if workers > h {
		workers = h
	}
	if workers <= 1 {
		fn(0, h)
		return
	}

	rowsPer := h / workers
	var wg sync.WaitGroup

	for i:=0; i<workers; i++ {
		y0 := i * rowsPer
		y1 := y0 + rowsPer
		if i == workers-1 {
			y1 = h
		}

		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}

	wg.Wait()
}
