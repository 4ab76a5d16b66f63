package vcf

import (
	"runtime"
	"sync"
)

// ReadItem names one file to read.
type ReadItem struct {
	Seq  int
	Path string
}

// ReadResult holds the matrix (or error) for a single file.
type ReadResult struct {
	Seq    int
	Path   string
	Matrix *Matrix
	Err    error
}

// ParallelRead reads files using a pool of workers. Each file is still
// parsed in one synchronous pass; only distinct files run concurrently.
// Results arrive in completion order; use OrderedCollect for input order.
// If workers is 0, runtime.NumCPU() is used.
func (r *Reader) ParallelRead(items <-chan ReadItem, workers int) <-chan ReadResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan ReadResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				m, err := r.Read(item.Path)
				results <- ReadResult{
					Seq:    item.Seq,
					Path:   item.Path,
					Matrix: m,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// ReadItems returns a closed channel yielding paths in order.
func ReadItems(paths []string) <-chan ReadItem {
	ch := make(chan ReadItem, len(paths))
	for i, p := range paths {
		ch <- ReadItem{Seq: i, Path: p}
	}
	close(ch)
	return ch
}

// OrderedCollect calls fn for each result in input (Seq) order, holding
// early arrivals until their predecessors are delivered. It returns after
// results is closed. When fn fails, the remaining results are discarded so
// that workers can finish, and the error is returned. A result whose Seq
// was already seen is dropped.
func OrderedCollect(results <-chan ReadResult, fn func(ReadResult) error) error {
	var (
		held []*ReadResult
		next int
		err  error
	)

	for r := range results {
		if err != nil {
			continue
		}
		off := r.Seq - next
		if off < 0 || (off < len(held) && held[off] != nil) {
			// Already delivered or duplicated.
			continue
		}
		for len(held) <= off {
			held = append(held, nil)
		}
		held[off] = &r

		for len(held) > 0 && held[0] != nil {
			ready := *held[0]
			held = held[1:]
			next++
			if err = fn(ready); err != nil {
				break
			}
		}
	}

	return err
}
