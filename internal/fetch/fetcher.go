package fetch

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"urbandata/internal/config"
	"urbandata/internal/dataset"
	"urbandata/internal/failures"
	"urbandata/internal/fileutil"
	"urbandata/internal/logging"
)

// Status is the outcome of one fetch.
type Status string

const (
	StatusFetched Status = "fetched"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

const lockRetryDelay = 250 * time.Millisecond

// Result describes one dataset's fetch.
type Result struct {
	Dataset  string
	Path     string
	Status   Status
	Rows     int
	Bytes    int64
	Encoding string
	Gzipped  bool
	Checksum string
	Duration time.Duration
	Err      error
}

// Getter is the single-dataset download contract used by the pool.
type Getter interface {
	Fetch(ctx context.Context, d dataset.Descriptor) (Result, error)
}

// Options configures a Fetcher.
type Options struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
}

// Fetcher downloads datasets over HTTP.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// New returns a Fetcher. A nil client gets a fresh one using opts.Timeout; a
// zero timeout means none.
func New(logger *slog.Logger, opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
		logger:    logging.NewComponentLogger(logger, "fetch"),
	}
}

// NewFromConfig builds a Fetcher from the [fetch] section.
func NewFromConfig(logger *slog.Logger, cfg *config.Config) *Fetcher {
	return New(logger, Options{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
	})
}

// Fetch downloads d into d.RawPath unless the file already exists. Failures
// are returned and also recorded on the Result.
func (f *Fetcher) Fetch(ctx context.Context, d dataset.Descriptor) (Result, error) {
	started := time.Now()
	ctx = logging.WithStage(logging.WithDataset(ctx, d.Name), "fetch")
	logger := logging.WithContext(ctx, f.logger)

	result, err := f.fetch(ctx, d, logger)
	result.Dataset = d.Name
	result.Path = d.RawPath
	result.Duration = time.Since(started)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		logging.WarnWithContext(logger, "fetch failed", "fetch_failed",
			logging.Error(err),
			logging.String("url", d.URL),
			logging.String(logging.FieldErrorHint, errorHint(err)),
		)
		return result, err
	}
	switch result.Status {
	case StatusSkipped:
		logger.Info("raw file present, skipping download",
			logging.String("path", d.RawPath),
			logging.String(logging.FieldEventType, "fetch_skipped"),
		)
	default:
		logger.Info("fetch complete",
			logging.String("path", d.RawPath),
			logging.Int("rows", result.Rows),
			logging.Int64("bytes", result.Bytes),
			logging.String("encoding", result.Encoding),
			logging.String("sha256", result.Checksum),
			logging.Duration("duration", result.Duration),
			logging.String(logging.FieldEventType, "fetch_complete"),
		)
	}
	return result, nil
}

func (f *Fetcher) fetch(ctx context.Context, d dataset.Descriptor, logger *slog.Logger) (Result, error) {
	var result Result
	if exists, err := fileutil.Exists(d.RawPath); err != nil {
		return result, &FetchError{Dataset: d.Name, URL: d.URL, Reason: "stat raw file", Err: err}
	} else if exists {
		result.Status = StatusSkipped
		return result, nil
	}

	dir := filepath.Dir(d.RawPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, failures.Wrap(failures.ErrWrite, d.Name, "create raw directory", dir, err)
	}
	lock := flock.New(lockPath(d.RawPath))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return result, &FetchError{Dataset: d.Name, URL: d.URL, Reason: "acquire download lock", Err: err}
	}
	if !locked {
		return result, &FetchError{Dataset: d.Name, URL: d.URL, Reason: "download lock held by another process"}
	}
	defer func() { _ = lock.Unlock() }()

	// Another process may have finished the download while we waited.
	if exists, err := fileutil.Exists(d.RawPath); err != nil {
		return result, &FetchError{Dataset: d.Name, URL: d.URL, Reason: "stat raw file", Err: err}
	} else if exists {
		result.Status = StatusSkipped
		return result, nil
	}

	payload, err := f.download(ctx, d, logger)
	if err != nil {
		return result, err
	}

	payload, gzipped, err := decompress(payload)
	if err != nil {
		return result, &FetchError{Dataset: d.Name, URL: d.URL, Err: err}
	}
	text, encoding, err := decodeText(payload)
	if err != nil {
		return result, &FetchError{Dataset: d.Name, URL: d.URL, Err: err}
	}
	records, err := parse(text, d.Delimiter)
	if err != nil {
		return result, &FetchError{Dataset: d.Name, URL: d.URL, Reason: "parse table", Err: err}
	}
	if len(records) == 0 {
		return result, &FetchError{Dataset: d.Name, URL: d.URL, Reason: "no rows in payload"}
	}

	written, err := fileutil.WriteAtomicSum(d.RawPath, 0o644, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(records); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	})
	if err != nil {
		return result, failures.Wrap(failures.ErrWrite, d.Name, "write raw", d.RawPath, err)
	}

	result.Status = StatusFetched
	result.Checksum = written.SHA256
	result.Rows = len(records) - 1
	result.Bytes = written.Bytes
	result.Encoding = encoding
	result.Gzipped = gzipped
	return result, nil
}

func (f *Fetcher) download(ctx context.Context, d dataset.Descriptor, logger *slog.Logger) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, &FetchError{Dataset: d.Name, URL: d.URL, Reason: "build request", Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	logger.Debug("requesting dataset", logging.String("url", d.URL))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Dataset: d.Name, URL: d.URL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Dataset: d.Name, URL: d.URL, StatusCode: resp.StatusCode}
	}

	body := &progressReader{
		r:       resp.Body,
		total:   resp.ContentLength,
		sampler: logging.NewProgressSampler(0, 0),
		logger:  logger,
	}
	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}
	if _, err := buf.ReadFrom(body); err != nil {
		return nil, &FetchError{Dataset: d.Name, URL: d.URL, Reason: "read body", Err: err}
	}
	if buf.Len() == 0 {
		return nil, &FetchError{Dataset: d.Name, URL: d.URL, Reason: "empty body"}
	}
	return buf.Bytes(), nil
}

func parse(text []byte, delimiter rune) ([][]string, error) {
	if delimiter == 0 {
		delimiter = ';'
	}
	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("line %d: %w", perr.Line, perr.Err)
		}
		return nil, err
	}
	return records, nil
}

func lockPath(rawPath string) string {
	return filepath.Join(filepath.Dir(rawPath), "."+filepath.Base(rawPath)+".lock")
}

type progressReader struct {
	r       io.Reader
	done    int64
	total   int64
	sampler *logging.ProgressSampler
	logger  *slog.Logger
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.done += int64(n)
	if n > 0 && p.sampler.ShouldLog(p.done, p.total) {
		attrs := []logging.Attr{logging.Int64("bytes", p.done)}
		if p.total > 0 {
			attrs = append(attrs, logging.Int64("total_bytes", p.total))
		}
		p.logger.Debug("download progress", logging.Args(attrs...)...)
	}
	return n, err
}
