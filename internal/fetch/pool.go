package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"urbandata/internal/dataset"
)

// DefaultWorkers bounds concurrent downloads when the caller passes zero.
const DefaultWorkers = 4

// All fetches every descriptor through at most workers concurrent downloads
// and returns one Result per descriptor, in descriptor order. A failed
// download never cancels the others; its error is carried on its Result.
func All(ctx context.Context, getter Getter, descriptors []dataset.Descriptor, workers int) []Result {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]Result, len(descriptors))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, d := range descriptors {
		g.Go(func() error {
			res, err := getter.Fetch(ctx, d)
			res.Dataset = d.Name
			if res.Path == "" {
				res.Path = d.RawPath
			}
			if err != nil {
				res.Status = StatusFailed
				res.Err = err
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed returns the results that ended in error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == StatusFailed {
			out = append(out, r)
		}
	}
	return out
}
