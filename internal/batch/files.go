package batch

import (
	"context"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/lezzdif22/payslip/internal/logging"
)

// FileResult pairs a sheet with the outcome of processing it.
type FileResult struct {
	Path   string
	Result *Result
	Err    error
}

// FileFunc processes one sheet.
type FileFunc func(ctx context.Context, path string) (*Result, error)

// RunFiles applies fn to every path with at most limit sheets in flight.
// Each sheet runs independently: one failing file is recorded in its
// FileResult and the others continue. Results keep the order of paths.
func RunFiles(ctx context.Context, paths []string, limit int, logger logging.Logger, fn FileFunc) ([]FileResult, error) {
	if limit <= 0 {
		limit = 1
	}
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := fn(gctx, path)
			results[i] = FileResult{Path: path, Result: res, Err: err}
			if err != nil && logger != nil {
				logger.WithError(err).Error("Failed to process payroll sheet",
					logging.F(logging.FieldFile, filepath.Base(path)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// Totals sums outcome counts over several file results.
func Totals(results []FileResult) (map[Status]int, int) {
	counts := make(map[Status]int)
	failedFiles := 0
	for _, r := range results {
		if r.Err != nil {
			failedFiles++
			continue
		}
		if r.Result == nil {
			continue
		}
		for status, n := range r.Result.Counts() {
			counts[status] += n
		}
	}
	return counts, failedFiles
}

// SortedStatuses returns the keys of counts in a stable order.
func SortedStatuses(counts map[Status]int) []Status {
	out := make([]Status, 0, len(counts))
	for s := range counts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
