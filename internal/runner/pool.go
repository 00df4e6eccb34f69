// internal/runner/pool.go
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/law-makers/cheapreg/internal/fetch"
	"github.com/law-makers/cheapreg/internal/registrar"
	"github.com/law-makers/cheapreg/pkg/models"
	"github.com/rs/zerolog/log"
)

// MaxConcurrency caps the number of sources fetched at once
const MaxConcurrency = 8

// Result is the outcome of fetching one source
type Result struct {
	Source   registrar.Source
	Records  []models.PriceRecord
	Err      error
	Duration time.Duration
}

// Progress receives one tick per finished source
type Progress interface {
	Add(n int) error
}

// WorkerPool fetches sources concurrently
type WorkerPool struct {
	fetchers    map[models.RenderMode]fetch.Fetcher
	concurrency int
	progress    Progress
}

// NewWorkerPool creates a pool. The static fetcher is required; the browser one
// is only needed when some source renders in a browser.
func NewWorkerPool(fetchers map[models.RenderMode]fetch.Fetcher, concurrency int) *WorkerPool {
	if concurrency <= 0 || concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}
	return &WorkerPool{
		fetchers:    fetchers,
		concurrency: concurrency,
	}
}

// SetProgress attaches a progress reporter
func (wp *WorkerPool) SetProgress(p Progress) {
	wp.progress = p
}

// FetchAll fetches every source and returns results in the order of sources.
// It returns once all sources finished or ctx is done.
func (wp *WorkerPool) FetchAll(ctx context.Context, sources []registrar.Source) []Result {
	results := make([]Result, len(sources))
	if len(sources) == 0 {
		return results
	}

	workers := wp.concurrency
	if workers > len(sources) {
		workers = len(sources)
	}

	jobs := make(chan int, len(sources))
	for i := range sources {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go wp.worker(ctx, w, sources, jobs, results, &wg)
	}
	wg.Wait()

	return results
}

// worker writes only to the results slots of the indices it receives
func (wp *WorkerPool) worker(ctx context.Context, id int, sources []registrar.Source, jobs <-chan int, results []Result, wg *sync.WaitGroup) {
	defer wg.Done()

	log.Debug().Int("worker_id", id).Msg("Worker started")

	for i := range jobs {
		src := sources[i]
		start := time.Now()

		var res Result
		select {
		case <-ctx.Done():
			res = Result{Source: src, Err: ctx.Err()}
		default:
			log.Debug().
				Int("worker_id", id).
				Str("source", src.Name).
				Str("render", string(src.Render)).
				Msg("Worker fetching source")
			res = wp.fetchOne(ctx, src)
		}
		res.Duration = time.Since(start)
		results[i] = res

		if wp.progress != nil {
			_ = wp.progress.Add(1)
		}
	}

	log.Debug().Int("worker_id", id).Msg("Worker finished")
}

func (wp *WorkerPool) fetchOne(ctx context.Context, src registrar.Source) Result {
	f, ok := wp.fetchers[src.Render]
	if !ok {
		return Result{Source: src, Err: fmt.Errorf("no fetcher for render mode %q", src.Render)}
	}
	records, err := src.Records(ctx, f)
	return Result{Source: src, Records: records, Err: err}
}
