package util

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Workers resolves a worker count flag, where anything below 1 means one
// less than the number of CPUs.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return Max(runtime.NumCPU()-1, 1)
}

// ForEach calls fn for 0..n-1 on the given number of workers. With a
// non-empty name a progress bar is drawn on stderr. Every failing index
// contributes to the returned error.
func ForEach(n, workers int, name string, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	var out io.Writer = io.Discard
	if name != "" {
		out = os.Stderr
	}
	p := mpb.New(mpb.WithWidth(64), mpb.WithOutput(out))
	bar := p.AddBar(int64(n),
		mpb.PrependDecorators(
			decor.Name(name+": "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.AverageETA(decor.ET_STYLE_GO),
		),
	)

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var (
		mu     sync.Mutex
		result *multierror.Error
		wg     sync.WaitGroup
	)
	for w := 0; w < Workers(workers); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := fn(i); err != nil {
					mu.Lock()
					result = multierror.Append(result, fmt.Errorf("item %d: %w", i, err))
					mu.Unlock()
				}
				bar.Increment()
			}
		}()
	}
	wg.Wait()
	p.Wait()
	return result.ErrorOrNil()
}
