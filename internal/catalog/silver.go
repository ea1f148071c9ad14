package catalog

import (
	"context"
	"fmt"
	"strings"

	"urbandata/internal/tabular"
	"urbandata/internal/textutil"
)

// SilverTable returns the table name holding dataset's clean rows.
func SilverTable(dataset string) string {
	return "silver_" + textutil.SanitizeToken(dataset)
}

// ReplaceSilver drops and recreates the silver table for dataset from table
// inside one transaction, so readers see either the previous or the new
// content. Empty cells are stored as NULL; int and float columns are stored
// with INTEGER and REAL affinity.
func (s *Store) ReplaceSilver(ctx context.Context, dataset string, table *tabular.Table) (int, error) {
	if table == nil {
		return 0, fmt.Errorf("replace silver %s: nil table", dataset)
	}
	if len(table.Schema) == 0 {
		return 0, fmt.Errorf("replace silver %s: empty schema", dataset)
	}
	name := quoteIdent(SilverTable(dataset))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin silver tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return 0, fmt.Errorf("drop %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, createSilverSQL(name, table.Schema)); err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}

	cols := make([]string, len(table.Schema))
	for i, f := range table.Schema {
		cols[i] = quoteIdent(f.Name)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		name, strings.Join(cols, ", "), makePlaceholders(len(cols))))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(table.Schema))
	for i, row := range table.Rows {
		for j, f := range table.Schema {
			args[j] = sqlValue(f.Kind, row[j])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit silver: %w", err)
	}
	return len(table.Rows), nil
}

// CountSilver returns the row count of dataset's silver table, or -1 when
// the table does not exist.
func (s *Store) CountSilver(ctx context.Context, dataset string) (int, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name=?", SilverTable(dataset),
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check silver table: %w", err)
	}
	if exists == 0 {
		return -1, nil
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+quoteIdent(SilverTable(dataset))).Scan(&n); err != nil {
		return 0, fmt.Errorf("count silver rows: %w", err)
	}
	return n, nil
}

func createSilverSQL(name string, schema tabular.Schema) string {
	defs := make([]string, len(schema))
	for i, f := range schema {
		defs[i] = quoteIdent(f.Name) + " " + affinity(f.Kind)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))
}

func affinity(kind tabular.Kind) string {
	switch kind {
	case tabular.Int:
		return "INTEGER"
	case tabular.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

func sqlValue(kind tabular.Kind, cell string) any {
	if cell == "" {
		return nil
	}
	switch kind {
	case tabular.Int:
		if v, ok := tabular.ParseInt(cell); ok {
			return v
		}
	case tabular.Float:
		if v, ok := tabular.ParseNumber(cell); ok {
			return v
		}
	}
	return cell
}
