package clean

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"urbandata/internal/tabular"
)

// ParquetPath swaps the .csv extension of a clean path for .parquet.
func ParquetPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".parquet"
}

// parquetMeta builds the CSVWriter schema: int → INT64, float → DOUBLE,
// text and dates → UTF8 byte arrays. Every column is optional.
func parquetMeta(schema tabular.Schema) []string {
	meta := make([]string, len(schema))
	for i, f := range schema {
		switch f.Kind {
		case tabular.Int:
			meta[i] = fmt.Sprintf("name=%s, type=INT64, repetitiontype=OPTIONAL", f.Name)
		case tabular.Float:
			meta[i] = fmt.Sprintf("name=%s, type=DOUBLE, repetitiontype=OPTIONAL", f.Name)
		default:
			meta[i] = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL", f.Name)
		}
	}
	return meta
}

// WriteParquet writes table to path through a temp file; empty cells become NULL.
func WriteParquet(path string, table *tabular.Table) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp := path + ".tmp"
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	fw, err := local.NewLocalFileWriter(tmp)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	pw, err := writer.NewCSVWriter(parquetMeta(table.Schema), fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("init parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range table.Rows {
		cells := make([]*string, len(row))
		for j := range row {
			if row[j] != "" {
				cells[j] = &row[j]
			}
		}
		if err := pw.WriteString(cells); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("finish parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close parquet file: %w", err)
	}
	return os.Rename(tmp, path)
}
