// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package runner applies the file scanner to every read file of a run
// using a bounded number of goroutines.
//
// Files are started largest first so that long scans do not end up
// running alone at the end of the run.  Each scan owns its count
// slice; the registry is shared read-only.  A failed file does not
// stop the others, its error is carried in its Result.
package runner

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kshedden/sgcount/count"
	"github.com/kshedden/sgcount/guides"
	"github.com/kshedden/sgcount/utils"
	"github.com/pkg/errors"
)

// Task is one read file to be scanned.
type Task struct {
	// Sample name, the file name without the extension
	Name string
	Path string
	Size int64
}

// Discover returns a task for every regular file in dir whose name
// ends with ext, sorted by sample name.
func Discover(dir, ext string) ([]Task, error) {

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(guides.ErrSourceNotFound, "reading %s: %v", dir, err)
	}

	var tasks []Task
	for _, e := range entries {
		fn := e.Name()
		if e.IsDir() || !strings.HasSuffix(fn, ext) || len(fn) == len(ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", fn)
		}
		tasks = append(tasks, Task{
			Name: strings.TrimSuffix(fn, ext),
			Path: filepath.Join(dir, fn),
			Size: info.Size(),
		})
	}

	if len(tasks) == 0 {
		return nil, errors.Wrapf(guides.ErrSourceNotFound, "no files ending in %s in %s", ext, dir)
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })

	return tasks, nil
}

// Options controls a call to Run.  The zero value is usable.
type Options struct {

	// Number of files scanned at once, defaults to one less than
	// the number of CPUs.
	Workers int

	// If not nil, new scans wait here while memory use is high.
	Gate *MemGate

	// Start and finish of each file is logged here.
	Logger *log.Logger

	// Called once per task as its result arrives, from a single
	// goroutine.
	OnDone func(*count.Result)

	Progress *Progress
}

type done struct {
	i   int
	res *count.Result
}

// Order returns the indices of tasks in the order they are started,
// largest file first.  Ties keep their listed order.
func Order(tasks []Task) []int {
	ix := make([]int, len(tasks))
	for i := range ix {
		ix[i] = i
	}
	sort.SliceStable(ix, func(a, b int) bool { return tasks[ix[a]].Size > tasks[ix[b]].Size })
	return ix
}

// Run scans all tasks and returns their results in the order of tasks.
// Every task gets a result.  Tasks not started before ctx is cancelled
// get a result whose Err is the context error.
func Run(ctx context.Context, tasks []Task, reg *guides.Registry, p *count.Params, opts Options) []*count.Result {

	workers := opts.Workers
	if workers <= 0 {
		workers = utils.DefaultWorkers()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	results := make([]*count.Result, len(tasks))
	donechan := make(chan done, workers)

	// Semaphore for limiting goroutines
	limit := make(chan bool, workers)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for d := range donechan {
			results[d.i] = d.res
			if opts.OnDone != nil {
				opts.OnDone(d.res)
			}
			opts.Progress.Increment()
		}
	}()

	cancelled := func(t Task, err error) *count.Result {
		return &count.Result{
			Name:   t.Name,
			Path:   t.Path,
			Counts: reg.NewCounts(),
			Err:    errors.Wrapf(err, "%s not processed", t.Path),
		}
	}

	for _, i := range Order(tasks) {

		t := tasks[i]

		if err := ctx.Err(); err != nil {
			donechan <- done{i, cancelled(t, err)}
			continue
		}

		limit <- true

		// Other scans hold the remaining slots
		running := func() int { return len(limit) - 1 }
		if err := opts.Gate.Wait(ctx, running, logger); err != nil {
			<-limit
			donechan <- done{i, cancelled(t, err)}
			continue
		}

		go func(i int, t Task) {
			defer func() { <-limit }()
			logger.Printf("Starting %s (%d bytes)", t.Path, t.Size)
			res := count.File(ctx, t.Name, t.Path, reg, p)
			if res.Err != nil {
				logger.Printf("Failed %s: %v", t.Path, res.Err)
			} else {
				logger.Printf("Finished %s in %v: %d reads, %d passed, %d exact, %d with mismatch",
					t.Path, res.Elapsed, res.Reads, res.Passed, res.Exact, res.Mismatch)
			}
			donechan <- done{i, res}
		}(i, t)
	}

	// Wait for all scans to release their slot
	for k := 0; k < workers; k++ {
		limit <- true
	}

	close(donechan)
	wg.Wait()

	return results
}
