package rangeindex

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/edsrzf/mmap-go"
	"go.uber.org/zap"

	"github.com/jvmmap/supersrg"
)

// ErrorAction controls how ParallelApplier reacts to a per-file failure.
type ErrorAction int

const (
	// ErrorActionExit fails the whole run on the first per-file error.
	ErrorActionExit ErrorAction = iota
	// ErrorActionWarn logs the error and continues with other files.
	ErrorActionWarn
)

// ParallelApplier walks the files named by a RangeMap and rewrites each
// one against a mapping snapshot, using a bounded channel of relative
// paths fed to a small worker pool — the same shape as the teacher's own
// directory-walk-plus-worker-pool pattern, generalized from PE files to
// arbitrary source files.
type ParallelApplier struct {
	NumWorkers  int
	ErrorAction ErrorAction
	Logger      *zap.Logger
}

// fileResult reports one file's outcome back to ApplyAll's aggregator.
type fileResult struct {
	path       string
	numChanged int
	err        error
}

// ApplyAll rewrites every file named in rangeMap, reading from srcDir and
// writing the rewritten copy under dstDir, and returns the total number of
// references actually changed across all files.
func (p *ParallelApplier) ApplyAll(ctx context.Context, rangeMap *RangeMap, snapshot supersrg.MappingSnapshot, srcDir, dstDir string) (int, error) {
	numWorkers := p.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 2
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	paths := make(chan string, 1000)
	results := make(chan fileResult, 1000)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				select {
				case <-ctx.Done():
					results <- fileResult{path: path, err: ctx.Err()}
					continue
				default:
				}
				n, err := p.applyOne(path, rangeMap.Files[path], snapshot, srcDir, dstDir)
				results <- fileResult{path: path, numChanged: n, err: err}
			}
		}()
	}

	go func() {
		for path := range rangeMap.Files {
			paths <- path
		}
		close(paths)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	total := 0
	var firstErr error
	for res := range results {
		if res.err != nil {
			logger.Warn("range apply failed", zap.String("file", res.path), zap.Error(res.err))
			if p.ErrorAction == ErrorActionExit && firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", res.path, res.err)
				// Fail fast: workers skip files not yet started.
				cancel()
			}
			continue
		}
		total += res.numChanged
	}
	if firstErr != nil {
		return total, firstErr
	}
	return total, nil
}

func (p *ParallelApplier) applyOne(relPath string, ranges FileRanges, snapshot supersrg.MappingSnapshot, srcDir, dstDir string) (int, error) {
	srcPath := filepath.Join(srcDir, relPath)
	f, err := os.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	var src []byte
	if info.Size() == 0 {
		src = nil
	} else {
		m, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			return 0, err
		}
		defer m.Unmap()
		src = m
	}

	dstPath := filepath.Join(dstDir, relPath)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return 0, err
	}
	out, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return 0, err
	}
	defer out.Close()

	return Apply(relPath, bytes.NewReader(src), out, ranges, snapshot)
}
