package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"urbandata/internal/catalog"
	"urbandata/internal/clean"
	"urbandata/internal/dataset"
	"urbandata/internal/failures"
	"urbandata/internal/fetch"
	"urbandata/internal/logging"
)

// recorder mirrors run outcomes into the catalog. Catalog errors are logged
// and otherwise ignored; a nil store turns every method into a no-op.
type recorder struct {
	store  *catalog.Store
	runID  string
	logger *slog.Logger
}

func (r *Runner) openRecorder(ctx context.Context, logger *slog.Logger, report Report) *recorder {
	rec := &recorder{runID: report.RunID, logger: logger}
	store, err := Catalog(r.cfg)
	if err != nil {
		rec.warn("catalog unavailable", err)
		return rec
	}
	if store == nil {
		return rec
	}
	if err := store.BeginRun(ctx, report.RunID, report.Command, report.StartedAt); err != nil {
		rec.warn("catalog run not recorded", err)
		_ = store.Close()
		return rec
	}
	rec.store = store
	return rec
}

func (rec *recorder) fetched(ctx context.Context, res fetch.Result) {
	if rec.store == nil {
		return
	}
	ev := catalog.Event{
		RunID:    rec.runID,
		Dataset:  res.Dataset,
		Stage:    catalog.StageFetch,
		Status:   string(res.Status),
		Rows:     res.Rows,
		Bytes:    res.Bytes,
		Path:     res.Path,
		Checksum: res.Checksum,
		Duration: res.Duration,
	}
	withError(&ev, res.Err)
	if _, err := rec.store.RecordEvent(ctx, ev); err != nil {
		rec.warn("catalog event not recorded", err)
	}
}

func (rec *recorder) cleaned(ctx context.Context, d dataset.Descriptor, res clean.Result) {
	if rec.store == nil {
		return
	}
	ev := catalog.Event{
		RunID:    rec.runID,
		Dataset:  d.Name,
		Stage:    catalog.StageClean,
		Status:   "cleaned",
		Rows:     res.Stats.Written,
		Path:     res.Path,
		Duration: res.Duration,
	}
	if res.Err != nil {
		ev.Status = "failed"
		withError(&ev, res.Err)
	}
	if _, err := rec.store.RecordEvent(ctx, ev); err != nil {
		rec.warn("catalog event not recorded", err)
	}
	if res.Err != nil {
		return
	}

	if _, err := rec.store.ReplaceSilver(ctx, d.Name, res.Table); err != nil {
		rec.warn("silver table not mirrored", err, logging.String(logging.FieldDataset, d.Name))
	}
	if res.Aggregate != nil && res.AggregatePath != "" {
		name := strings.TrimSuffix(filepath.Base(res.AggregatePath), filepath.Ext(res.AggregatePath))
		if _, err := rec.store.ReplaceSilver(ctx, name, res.Aggregate); err != nil {
			rec.warn("aggregate table not mirrored", err, logging.String(logging.FieldDataset, d.Name))
		}
	}
}

func (rec *recorder) finish(ctx context.Context, report Report, counts Counts) {
	if rec.store == nil {
		return
	}
	err := rec.store.FinishRun(ctx, catalog.Run{
		ID:         report.RunID,
		FinishedAt: report.FinishedAt,
		Fetched:    counts.Fetched,
		Skipped:    counts.Skipped,
		Cleaned:    counts.Cleaned,
		Failed:     counts.Failed,
	})
	if err != nil {
		rec.warn("catalog run not finalized", err)
	}
}

func (rec *recorder) close() {
	if rec.store != nil {
		_ = rec.store.Close()
	}
}

func (rec *recorder) warn(msg string, err error, attrs ...logging.Attr) {
	attrs = append(attrs,
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "delete the catalog database to rebuild it on the next run"),
		logging.String(logging.FieldImpact, "catalog mirror incomplete; bronze and silver files unaffected"),
	)
	logging.WarnWithContext(rec.logger, msg, "catalog_error", attrs...)
}

func withError(ev *catalog.Event, err error) {
	if err == nil {
		return
	}
	ev.ErrorKind = failures.Kind(err)
	ev.ErrorMessage = err.Error()
}
