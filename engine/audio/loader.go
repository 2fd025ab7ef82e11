package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Loader decodes several sound files concurrently.
type Loader interface {
	// LoadAll decodes every path. Paths that fail are left out of the result and their errors
	// are joined into the returned error.
	//
	// Parameters:
	//   - paths: the sound files
	//
	// Returns:
	//   - map[string]*Source: the decoded sounds keyed by path
	//   - error: the joined decode errors, or nil
	LoadAll(paths ...string) (map[string]*Source, error)

	// Close stops the worker pool.
	Close()
}

type loader struct {
	cfg  config
	pool worker.DynamicWorkerPool
}

var _ Loader = &loader{}

// NewLoader creates a Loader backed by a worker pool of WithWorkers workers.
//
// Parameters:
//   - options: the AudioBuilderOption values to apply
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...AudioBuilderOption) Loader {
	cfg := newConfig(options...)
	return &loader{
		cfg:  cfg,
		pool: worker.NewDynamicWorkerPool(cfg.workers, 64, 1*time.Second),
	}
}

func (l *loader) LoadAll(paths ...string) (map[string]*Source, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		sources = make(map[string]*Source, len(paths))
		errs    []error
	)
	for i, path := range paths {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: path,
			Do: func() (any, error) {
				defer wg.Done()
				src, err := l.cfg.decoder.Decode(path)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return nil, err
				}
				sources[path] = src
				return src, nil
			},
		})
	}
	wg.Wait()
	return sources, errors.Join(errs...)
}

func (l *loader) Close() {
	l.pool.Stop()
}
