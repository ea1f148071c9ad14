package pipeline

import (
	"time"

	"urbandata/internal/clean"
	"urbandata/internal/fetch"
	"urbandata/internal/failures"
)

// Stage names used in reports and logs.
const (
	StageFetch = "fetch"
	StageClean = "clean"
)

// Report summarizes one run.
type Report struct {
	RunID      string
	Command    string
	StartedAt  time.Time
	FinishedAt time.Time
	LogPath    string
	Fetch      []fetch.Result
	Clean      []clean.Result
}

// Counts tallies a report's outcomes.
type Counts struct {
	Fetched int
	Skipped int
	Cleaned int
	Failed  int
}

// Failure is one dataset that did not complete a stage.
type Failure struct {
	Dataset string
	Stage   string
	Kind    string
	Err     error
}

// Duration is the wall time of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Counts tallies fetch and clean outcomes.
func (r Report) Counts() Counts {
	var c Counts
	for _, res := range r.Fetch {
		switch res.Status {
		case fetch.StatusFetched:
			c.Fetched++
		case fetch.StatusSkipped:
			c.Skipped++
		default:
			c.Failed++
		}
	}
	for _, res := range r.Clean {
		if res.Err != nil {
			c.Failed++
			continue
		}
		c.Cleaned++
	}
	return c
}

// Failures lists every failed dataset stage in report order.
func (r Report) Failures() []Failure {
	var out []Failure
	for _, res := range r.Fetch {
		if res.Status == fetch.StatusFailed {
			out = append(out, Failure{Dataset: res.Dataset, Stage: StageFetch, Kind: failures.Kind(res.Err), Err: res.Err})
		}
	}
	for _, res := range r.Clean {
		if res.Err != nil {
			out = append(out, Failure{Dataset: res.Dataset, Stage: StageClean, Kind: failures.Kind(res.Err), Err: res.Err})
		}
	}
	return out
}

// OK reports whether every dataset completed its stages.
func (r Report) OK() bool {
	return len(r.Failures()) == 0
}
