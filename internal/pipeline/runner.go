package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"urbandata/internal/catalog"
	"urbandata/internal/clean"
	"urbandata/internal/config"
	"urbandata/internal/dataset"
	"urbandata/internal/fetch"
	"urbandata/internal/logging"
)

// Runner coordinates the fetch and clean stages for the configured datasets.
type Runner struct {
	cfg         *config.Config
	logger      *slog.Logger
	descriptors []dataset.Descriptor
	getter      fetch.Getter
	now         func() time.Time
	newID       func() string
}

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithGetter replaces the HTTP fetcher, mostly for tests.
func WithGetter(g fetch.Getter) Option {
	return func(r *Runner) { r.getter = g }
}

// WithClock overrides the time source used for run stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithRunID fixes the run identifier instead of generating a UUID.
func WithRunID(id string) Option {
	return func(r *Runner) { r.newID = func() string { return id } }
}

// New builds a Runner over cfg's datasets. A nil logger discards output.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:         cfg,
		logger:      logger,
		descriptors: dataset.FromConfig(cfg),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run fetches every dataset, then cleans every dataset.
func (r *Runner) Run(ctx context.Context) Report {
	return r.execute(ctx, "run", r.descriptors, true, true)
}

// RunFetch fetches the named datasets, or all of them when names is empty.
func (r *Runner) RunFetch(ctx context.Context, names ...string) (Report, error) {
	selected, err := dataset.Select(r.descriptors, names)
	if err != nil {
		return Report{}, err
	}
	return r.execute(ctx, "fetch", selected, true, false), nil
}

// RunClean cleans the named datasets from their existing raw files, or all of
// them when names is empty.
func (r *Runner) RunClean(ctx context.Context, names ...string) (Report, error) {
	selected, err := dataset.Select(r.descriptors, names)
	if err != nil {
		return Report{}, err
	}
	return r.execute(ctx, "clean", selected, false, true), nil
}

func (r *Runner) execute(ctx context.Context, command string, descriptors []dataset.Descriptor, doFetch, doClean bool) Report {
	report := Report{
		RunID:     r.newID(),
		Command:   command,
		StartedAt: r.now(),
	}

	logger, runLog, err := logging.NewRunLogger(r.logger, r.cfg.Paths.LogDir, report.RunID, report.StartedAt)
	if err != nil {
		logging.WarnWithContext(r.logger, "run log unavailable", "run_log_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run continues with console logging only"),
		)
		logger = r.logger.With(logging.String(logging.FieldRunID, report.RunID))
		runLog = &logging.RunLog{}
	}
	defer runLog.Close()
	report.LogPath = runLog.Path
	if removed := logging.PruneRunLogs(logger, r.cfg.Paths.LogDir, r.cfg.Logging.RetentionDays, report.StartedAt, runLog.Path); removed > 0 {
		logger.Debug("pruned old run logs", logging.Int("removed", removed))
	}

	logger.Info("run started",
		logging.String("command", command),
		logging.Int("datasets", len(descriptors)),
		logging.String(logging.FieldEventType, "run_started"),
	)

	rec := r.openRecorder(ctx, logger, report)
	defer rec.close()

	if doFetch {
		getter := r.getter
		if getter == nil {
			getter = fetch.NewFromConfig(logger, r.cfg)
		}
		report.Fetch = fetch.All(ctx, getter, descriptors, r.cfg.Fetch.Workers)
		for _, res := range report.Fetch {
			rec.fetched(ctx, res)
		}
	}

	if doClean {
		cleaner := clean.New(logger, clean.Options{Parquet: r.cfg.Clean.Parquet})
		report.Clean = make([]clean.Result, 0, len(descriptors))
		for _, d := range descriptors {
			res, _ := cleaner.Clean(ctx, d)
			rec.cleaned(ctx, d, res)
			// Tables are only needed for the catalog mirror.
			res.Table, res.Aggregate = nil, nil
			report.Clean = append(report.Clean, res)
		}
	}

	report.FinishedAt = r.now()
	counts := report.Counts()
	rec.finish(ctx, report, counts)

	attrs := []logging.Attr{
		logging.String("command", command),
		logging.Int("fetched", counts.Fetched),
		logging.Int("skipped", counts.Skipped),
		logging.Int("cleaned", counts.Cleaned),
		logging.Int("failed", counts.Failed),
		logging.Duration("duration", report.Duration()),
	}
	switch {
	case ctx.Err() != nil:
		attrs = append(attrs,
			logging.Error(ctx.Err()),
			logging.String(logging.FieldErrorHint, "rerun the command; raw files already fetched are skipped"),
		)
		logging.ErrorWithContext(logger, "run interrupted", "run_interrupted", attrs...)
	case counts.Failed > 0:
		attrs = append(attrs, logging.String(logging.FieldEventType, "run_complete"))
		logger.Warn("run complete with failures", logging.Args(attrs...)...)
	default:
		attrs = append(attrs, logging.String(logging.FieldEventType, "run_complete"))
		logger.Info("run complete", logging.Args(attrs...)...)
	}
	return report
}

// Catalog opens the configured catalog, or returns nil when it is disabled.
func Catalog(cfg *config.Config) (*catalog.Store, error) {
	if !cfg.Catalog.Enabled {
		return nil, nil
	}
	return catalog.Open(cfg)
}
