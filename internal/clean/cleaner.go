package clean

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"urbandata/internal/dataset"
	"urbandata/internal/failures"
	"urbandata/internal/fileutil"
	"urbandata/internal/logging"
	"urbandata/internal/tabular"
)

// Options toggles optional outputs.
type Options struct {
	Parquet bool
}

// Result describes one dataset's clean run.
type Result struct {
	Dataset       string
	Path          string
	AggregatePath string
	ParquetPaths  []string
	Strategy      string
	Stats         Stats
	Table         *tabular.Table
	Aggregate     *tabular.Table
	Duration      time.Duration
	Err           error
}

// Cleaner runs recipes against raw files.
type Cleaner struct {
	logger *slog.Logger
	opts   Options
}

// New returns a Cleaner. A nil logger discards output.
func New(logger *slog.Logger, opts Options) *Cleaner {
	return &Cleaner{logger: logging.NewComponentLogger(logger, "clean"), opts: opts}
}

// Clean reads d.RawPath, applies the recipe for d.Kind and writes
// d.CleanPath (and d.AggregatePath when the recipe has a rollup). The
// returned Result carries the error too so callers can collect outcomes.
func (c *Cleaner) Clean(ctx context.Context, d dataset.Descriptor) (Result, error) {
	started := time.Now()
	ctx = logging.WithStage(logging.WithDataset(ctx, d.Name), "clean")
	logger := logging.WithContext(ctx, c.logger)

	result, err := c.clean(ctx, d, logger)
	result.Dataset = d.Name
	result.Duration = time.Since(started)
	if err != nil {
		result.Err = err
		logging.WarnWithContext(logger, "clean failed", "clean_failed",
			logging.Error(err),
			logging.String("failure", failures.Kind(err)),
			logging.String(logging.FieldErrorHint, failures.Hint(err)),
		)
		return result, err
	}
	logger.Info("clean complete", logging.Args(append(result.Stats.Attrs(),
		logging.String("path", result.Path),
		logging.String("strategy", result.Strategy),
		logging.Duration("duration", result.Duration),
		logging.String(logging.FieldEventType, "clean_complete"),
	)...)...)
	return result, nil
}

func (c *Cleaner) clean(ctx context.Context, d dataset.Descriptor, logger *slog.Logger) (Result, error) {
	var result Result
	recipe, ok := Lookup(d.Kind)
	if !ok {
		return result, failures.Wrap(failures.ErrConfiguration, d.Name, "clean",
			fmt.Sprintf("no recipe for kind %q (known: %s)", d.Kind, strings.Join(Kinds(), ", ")), nil)
	}

	table, stats, strategy, err := Apply(ctx, recipe, d.RawPath)
	if err != nil {
		if errors.Is(err, failures.ErrMissingInput) || errors.Is(err, failures.ErrSchema) {
			return result, fmt.Errorf("%s: %w", d.Name, err)
		}
		return result, failures.Wrap(failures.ErrWrite, d.Name, "clean", "", err)
	}
	result.Stats = stats
	result.Strategy = strategy
	result.Table = table
	logger.Debug("raw parsed", logging.String("strategy", strategy), logging.Int("rows", stats.Read))

	if err := writeCSV(d.CleanPath, table); err != nil {
		return result, failures.Wrap(failures.ErrWrite, d.Name, "write clean", d.CleanPath, err)
	}
	result.Path = d.CleanPath

	if recipe.Aggregate != nil && d.AggregatePath != "" {
		result.Aggregate = recipe.Aggregate(table)
		if err := writeCSV(d.AggregatePath, result.Aggregate); err != nil {
			return result, failures.Wrap(failures.ErrWrite, d.Name, "write aggregate", d.AggregatePath, err)
		}
		result.AggregatePath = d.AggregatePath
	}

	if c.opts.Parquet {
		outputs := []output{{result.Path, table}}
		if result.AggregatePath != "" {
			outputs = append(outputs, output{result.AggregatePath, result.Aggregate})
		}
		for _, out := range outputs {
			path := ParquetPath(out.path)
			if err := WriteParquet(path, out.table); err != nil {
				return result, failures.Wrap(failures.ErrWrite, d.Name, "write parquet", path, err)
			}
			result.ParquetPaths = append(result.ParquetPaths, path)
		}
	}
	return result, nil
}

// Apply runs recipe over the raw file at path and returns the clean table
// without writing anything.
func Apply(ctx context.Context, recipe Recipe, path string) (*tabular.Table, Stats, string, error) {
	var stats Stats
	raw, proj, err := tabular.ReadFileColumns(path, tabular.DefaultStrategies, recipe.Columns)
	if err != nil {
		return nil, stats, "", err
	}
	stats.Read = raw.Stats.Read
	stats.Empty = raw.Stats.Empty
	stats.HeaderRepeats = raw.Stats.HeaderRepeats

	table := tabular.NewTable(recipe.Schema)
	seen := tabular.Dedupe{}
	key := make([]string, len(recipe.DedupeOn))
	for i, row := range raw.Rows {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, "", err
			}
		}
		rec := proj.Record(row)
		if len(recipe.DedupeOn) > 0 {
			for j, target := range recipe.DedupeOn {
				key[j] = rec.Get(target)
			}
			if seen.Seen(key...) {
				stats.Duplicates++
				continue
			}
		}
		out, ok := recipe.Row(rec)
		if !ok {
			stats.Rejected++
			continue
		}
		table.Append(out...)
	}
	stats.Written = table.Len()
	return table, stats, raw.Strategy.Name, nil
}

type output struct {
	path  string
	table *tabular.Table
}

func writeCSV(path string, table *tabular.Table) error {
	_, err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return table.WriteCSV(w)
	})
	return err
}
