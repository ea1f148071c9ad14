package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"urbandata/internal/catalog"
	"urbandata/internal/tabular"
	"urbandata/internal/testsupport"
)

func TestOpenCreatesSchemaOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog())
	store := testsupport.MustOpenCatalog(t, cfg)
	if store.Path() != cfg.Catalog.Path {
		t.Fatalf("Path = %q, want %q", store.Path(), cfg.Catalog.Path)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("reopen catalog: %v", err)
	}
	defer reopened.Close()
	run, err := reopened.LatestRun(context.Background())
	if err != nil || run != nil {
		t.Fatalf("expected empty catalog, got %+v, %v", run, err)
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog())
	testsupport.MustOpenCatalog(t, cfg).Close()

	db, err := sql.Open("sqlite", cfg.Catalog.Path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := catalog.Open(cfg); !errors.Is(err, catalog.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestRunLifecycleAndEvents(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog())
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	if err := store.BeginRun(ctx, "run-a", "run", started); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.BeginRun(ctx, "", "run", started); err == nil {
		t.Fatal("expected error for empty run id")
	}
	events := []catalog.Event{
		{RunID: "run-a", Dataset: "dvf", Stage: catalog.StageFetch, Status: "fetched", Rows: 10, Bytes: 512, Path: "/bronze/dvf.csv", Checksum: "abc", Duration: 1500 * time.Millisecond},
		{RunID: "run-a", Dataset: "colleges", Stage: catalog.StageFetch, Status: "failed", ErrorKind: "fetch", ErrorMessage: "unexpected status 404"},
		{RunID: "run-a", Dataset: "dvf", Stage: catalog.StageClean, Status: "cleaned", Rows: 8},
	}
	for _, ev := range events {
		if _, err := store.RecordEvent(ctx, ev); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}
	if _, err := store.RecordEvent(ctx, catalog.Event{RunID: "missing", Dataset: "dvf", Stage: catalog.StageFetch, Status: "fetched"}); err == nil {
		t.Fatal("expected foreign key violation for unknown run")
	}

	finished := started.Add(time.Minute)
	if err := store.FinishRun(ctx, catalog.Run{ID: "run-a", FinishedAt: finished, Fetched: 1, Cleaned: 1, Failed: 1}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if err := store.FinishRun(ctx, catalog.Run{ID: "nope", FinishedAt: finished}); err == nil {
		t.Fatal("expected error finishing unknown run")
	}

	run, err := store.LatestRun(ctx)
	if err != nil || run == nil {
		t.Fatalf("LatestRun: %+v, %v", run, err)
	}
	if run.ID != "run-a" || run.Command != "run" || !run.Finished() || !run.FinishedAt.Equal(finished) || run.Failed != 1 {
		t.Fatalf("unexpected run %+v", run)
	}

	got, err := store.EventsForRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("EventsForRun: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	if got[0].Duration != 1500*time.Millisecond || got[0].Path != "/bronze/dvf.csv" || got[0].Checksum != "abc" || got[0].RecordedAt.IsZero() {
		t.Fatalf("unexpected first event %+v", got[0])
	}
	if got[1].ErrorKind != "fetch" || got[1].Path != "" {
		t.Fatalf("unexpected failed event %+v", got[1])
	}
}

func TestLatestEventsPerDatasetAndStage(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog())
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	for i, id := range []string{"first", "second"} {
		if err := store.BeginRun(ctx, id, "fetch", time.Now().Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
	}
	record := func(run, status string) {
		t.Helper()
		if _, err := store.RecordEvent(ctx, catalog.Event{RunID: run, Dataset: "dvf", Stage: catalog.StageFetch, Status: status}); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}
	record("first", "fetched")
	record("second", "skipped")

	latest, err := store.LatestEvents(ctx)
	if err != nil {
		t.Fatalf("LatestEvents: %v", err)
	}
	if len(latest) != 1 || latest[0].Status != "skipped" || latest[0].RunID != "second" {
		t.Fatalf("unexpected latest events %+v", latest)
	}
}

func TestReplaceSilverTypesAndReplaces(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog())
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	schema := tabular.Schema{
		{Name: "code_postal", Kind: tabular.Text},
		{Name: "arrondissement", Kind: tabular.Int},
		{Name: "prix_m2", Kind: tabular.Float},
		{Name: "date_mutation", Kind: tabular.Date},
	}
	table := tabular.NewTable(schema)
	table.Append("75006", "6", "10000", "2023-01-05")
	table.Append("75011", "11", "", "2023-02-10")

	n, err := store.ReplaceSilver(ctx, "dvf", table)
	if err != nil || n != 2 {
		t.Fatalf("ReplaceSilver = %d, %v", n, err)
	}

	db, err := sql.Open("sqlite", cfg.Catalog.Path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	var (
		district int64
		price    sql.NullFloat64
		typ      string
	)
	if err := db.QueryRow(`SELECT arrondissement, prix_m2, typeof(arrondissement) FROM silver_dvf WHERE code_postal = '75006'`).Scan(&district, &price, &typ); err != nil {
		t.Fatalf("query silver: %v", err)
	}
	if district != 6 || !price.Valid || price.Float64 != 10000 || typ != "integer" {
		t.Fatalf("unexpected typed row: %d %v %s", district, price, typ)
	}
	if err := db.QueryRow(`SELECT prix_m2 FROM silver_dvf WHERE code_postal = '75011'`).Scan(&price); err != nil {
		t.Fatalf("query null: %v", err)
	}
	if price.Valid {
		t.Fatalf("expected NULL for empty cell, got %v", price.Float64)
	}

	smaller := tabular.NewTable(schema)
	smaller.Append("75001", "1", "5000.5", "2024-01-01")
	if _, err := store.ReplaceSilver(ctx, "dvf", smaller); err != nil {
		t.Fatalf("ReplaceSilver again: %v", err)
	}
	count, err := store.CountSilver(ctx, "dvf")
	if err != nil || count != 1 {
		t.Fatalf("CountSilver = %d, %v; want 1", count, err)
	}
	if count, err := store.CountSilver(ctx, "colleges"); err != nil || count != -1 {
		t.Fatalf("CountSilver(missing) = %d, %v; want -1", count, err)
	}
}

func TestSilverTableName(t *testing.T) {
	if got := catalog.SilverTable("Logement-Sociaux"); got != "silver_logement_sociaux" {
		t.Fatalf("SilverTable = %q", got)
	}
}
