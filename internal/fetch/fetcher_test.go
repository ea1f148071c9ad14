package fetch_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"urbandata/internal/dataset"
	"urbandata/internal/failures"
	"urbandata/internal/fetch"
	"urbandata/internal/testsupport"
)

func descriptor(dir, name, url string) dataset.Descriptor {
	return dataset.Descriptor{
		Name:      name,
		Kind:      name,
		URL:       url,
		Delimiter: ';',
		RawPath:   filepath.Join(dir, name+".csv"),
	}
}

func TestFetchRewritesSemicolonToComma(t *testing.T) {
	body := testsupport.CSV(";",
		[]string{"code_postal", "nom", "adresse"},
		[]string{"75006", "Square", `"12, rue du Bac"`},
	)
	portal := testsupport.NewPortal(t, map[string]testsupport.Route{
		"/colleges.csv": {Body: []byte(body)},
	})
	d := descriptor(t.TempDir(), "colleges", portal.URL("/colleges.csv"))

	res, err := fetch.New(nil, fetch.Options{UserAgent: "urbandata/test"}).Fetch(context.Background(), d)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Status != fetch.StatusFetched || res.Rows != 1 || res.Encoding != fetch.EncodingUTF8 {
		t.Fatalf("unexpected result %+v", res)
	}
	got := testsupport.ReadFile(t, d.RawPath)
	want := "code_postal,nom,adresse\n75006,Square,\"12, rue du Bac\"\n"
	if got != want {
		t.Fatalf("raw file = %q, want %q", got, want)
	}
	if len(res.Checksum) != 64 {
		t.Fatalf("expected hex sha256 checksum, got %q", res.Checksum)
	}
	if res.Bytes != int64(len(want)) {
		t.Fatalf("bytes = %d, want %d", res.Bytes, len(want))
	}
	if agents := portal.UserAgents(); len(agents) != 1 || agents[0] != "urbandata/test" {
		t.Fatalf("user agents = %q", agents)
	}
}

func TestFetchSkipsExistingRawFile(t *testing.T) {
	portal := testsupport.NewPortal(t, map[string]testsupport.Route{
		"/dvf.csv": {Body: []byte("a;b\n1;2\n")},
	})
	d := descriptor(t.TempDir(), "dvf", portal.URL("/dvf.csv"))
	testsupport.WriteFile(t, d.RawPath, "old;content\n")
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(d.RawPath, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	res, err := fetch.New(nil, fetch.Options{}).Fetch(context.Background(), d)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Status != fetch.StatusSkipped {
		t.Fatalf("status = %q, want skipped", res.Status)
	}
	if portal.TotalHits() != 0 {
		t.Fatalf("expected no request for an existing raw file, got %d", portal.TotalHits())
	}
	if got := testsupport.ReadFile(t, d.RawPath); got != "old;content\n" {
		t.Fatalf("raw file modified: %q", got)
	}
	info, err := os.Stat(d.RawPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Fatalf("mtime changed: %v", info.ModTime())
	}
}

func TestFetchFailureLeavesNoFile(t *testing.T) {
	portal := testsupport.NewPortal(t, map[string]testsupport.Route{
		"/empty.csv": {Body: nil},
	})
	dir := t.TempDir()
	cases := map[string]dataset.Descriptor{
		"not found": descriptor(dir, "missing", portal.URL("/missing.csv")),
		"empty":     descriptor(dir, "empty", portal.URL("/empty.csv")),
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := fetch.New(nil, fetch.Options{}).Fetch(context.Background(), d)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, failures.ErrFetch) {
				t.Fatalf("expected ErrFetch, got %v", err)
			}
			if res.Status != fetch.StatusFailed || res.Err == nil {
				t.Fatalf("unexpected result %+v", res)
			}
			if _, statErr := os.Stat(d.RawPath); !os.IsNotExist(statErr) {
				t.Fatalf("expected no raw file, stat err = %v", statErr)
			}
		})
	}

	_, err := fetch.New(nil, fetch.Options{}).Fetch(context.Background(), cases["not found"])
	if !fetch.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 FetchError, got %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestFetchGzipLatin1Payload(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte("nom;arrondissement\nJardin de l'H\xf4tel;75004\n"))
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	portal := testsupport.NewPortal(t, map[string]testsupport.Route{
		"/espace_verts.csv": {Body: buf.Bytes()},
	})
	d := descriptor(t.TempDir(), "espace_verts", portal.URL("/espace_verts.csv"))

	res, err := fetch.New(nil, fetch.Options{}).Fetch(context.Background(), d)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !res.Gzipped || res.Encoding != fetch.EncodingWindows1252 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := testsupport.ReadFile(t, d.RawPath); got != "nom,arrondissement\nJardin de l'Hôtel,75004\n" {
		t.Fatalf("raw file = %q", got)
	}
}

func TestFetchHonorsCancelledContext(t *testing.T) {
	portal := testsupport.NewPortal(t, map[string]testsupport.Route{
		"/dvf.csv": {Body: []byte("a;b\n")},
	})
	d := descriptor(t.TempDir(), "dvf", portal.URL("/dvf.csv"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fetch.New(nil, fetch.Options{}).Fetch(ctx, d); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if _, err := os.Stat(d.RawPath); !os.IsNotExist(err) {
		t.Fatalf("expected no raw file, stat err = %v", err)
	}
}

type fakeGetter struct {
	active  atomic.Int32
	peak    atomic.Int32
	failOn  string
	latency time.Duration
}

func (f *fakeGetter) Fetch(_ context.Context, d dataset.Descriptor) (fetch.Result, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(f.latency)
	if d.Name == f.failOn {
		return fetch.Result{}, errors.New("boom")
	}
	return fetch.Result{Status: fetch.StatusFetched, Rows: len(d.Name)}, nil
}

func TestAllKeepsOrderAndIsolatesFailures(t *testing.T) {
	names := []string{"dvf", "logement_sociaux", "espace_verts", "colleges", "elementaire", "maternelle", "abribac_dechets_alimentaires"}
	descriptors := make([]dataset.Descriptor, 0, len(names))
	for _, name := range names {
		descriptors = append(descriptors, descriptor("/bronze", name, "http://example.invalid/"+name))
	}
	getter := &fakeGetter{failOn: "colleges", latency: 20 * time.Millisecond}

	results := fetch.All(context.Background(), getter, descriptors, 2)
	if len(results) != len(names) {
		t.Fatalf("got %d results, want %d", len(results), len(names))
	}
	for i, res := range results {
		if res.Dataset != names[i] {
			t.Fatalf("result %d is %q, want %q", i, res.Dataset, names[i])
		}
		if res.Path != descriptors[i].RawPath {
			t.Fatalf("result %d path = %q", i, res.Path)
		}
		wantStatus := fetch.StatusFetched
		if names[i] == "colleges" {
			wantStatus = fetch.StatusFailed
		}
		if res.Status != wantStatus {
			t.Fatalf("%s status = %q, want %q", res.Dataset, res.Status, wantStatus)
		}
	}
	if peak := getter.peak.Load(); peak > 2 {
		t.Fatalf("observed %d concurrent fetches, limit was 2", peak)
	}
	if failed := fetch.Failed(results); len(failed) != 1 || failed[0].Dataset != "colleges" {
		t.Fatalf("unexpected failed set %+v", failed)
	}
}

func TestAllAgainstPortal(t *testing.T) {
	portal := testsupport.NewPortal(t, map[string]testsupport.Route{
		"/a.csv": {Body: []byte("x;y\n1;2\n")},
		"/b.csv": {Status: http.StatusInternalServerError},
		"/c.csv": {Body: []byte("x;y\n3;4\n5;6\n")},
	})
	dir := t.TempDir()
	descriptors := []dataset.Descriptor{
		descriptor(dir, "a", portal.URL("/a.csv")),
		descriptor(dir, "b", portal.URL("/b.csv")),
		descriptor(dir, "c", portal.URL("/c.csv")),
	}
	testsupport.WriteFile(t, descriptors[2].RawPath, "already,here\n")

	results := fetch.All(context.Background(), fetch.New(nil, fetch.Options{}), descriptors, 0)
	want := []fetch.Status{fetch.StatusFetched, fetch.StatusFailed, fetch.StatusSkipped}
	for i, res := range results {
		if res.Status != want[i] {
			t.Fatalf("%s status = %q, want %q (err %v)", res.Dataset, res.Status, want[i], res.Err)
		}
	}
	if portal.Hits("/c.csv") != 0 {
		t.Fatal("skipped dataset was requested")
	}
}

func TestFetchChecksumMatchesCommittedFile(t *testing.T) {
	portal := testsupport.NewPortal(t, map[string]testsupport.Route{
		"/colleges.csv": {Body: []byte("libelle;arr_insee\nCollège Montaigne;75106\n")},
	})
	d := descriptor(t.TempDir(), "colleges", portal.URL("/colleges.csv"))

	res, err := fetch.New(nil, fetch.Options{}).Fetch(context.Background(), d)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	sum := sha256.Sum256([]byte(testsupport.ReadFile(t, d.RawPath)))
	if res.Checksum != hex.EncodeToString(sum[:]) {
		t.Fatalf("checksum %s does not match raw file", res.Checksum)
	}
}

func TestFetchNotFoundLogsURLHint(t *testing.T) {
	portal := testsupport.NewPortal(t, nil)
	d := descriptor(t.TempDir(), "missing", portal.URL("/missing.csv"))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	if _, err := fetch.New(logger, fetch.Options{}).Fetch(context.Background(), d); err == nil {
		t.Fatal("expected error")
	}
	out := buf.String()
	if !strings.Contains(out, `"event_type":"fetch_failed"`) || !strings.Contains(out, "update the dataset url") {
		t.Fatalf("expected 404 hint in log, got %q", out)
	}
}
