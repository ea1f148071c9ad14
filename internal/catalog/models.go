package catalog

import "time"

// Stage names recorded in dataset_events.
const (
	StageFetch = "fetch"
	StageClean = "clean"
)

// Run is one pipeline invocation.
type Run struct {
	ID         string
	Command    string
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Skipped    int
	Cleaned    int
	Failed     int
}

// Finished reports whether FinishRun was recorded.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Event is one dataset outcome within a run.
type Event struct {
	ID           int64
	RunID        string
	Dataset      string
	Stage        string
	Status       string
	Rows         int
	Bytes        int64
	Path         string
	Checksum     string
	ErrorKind    string
	ErrorMessage string
	Duration     time.Duration
	RecordedAt   time.Time
}
