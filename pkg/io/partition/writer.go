// Package partition writes datasets under date-partitioned directory
// trees, one whole file per run. Partitioning is keyed on the wall-clock
// ingestion date, not on any event time in the data: this is daily batch
// semantics, and re-running on the same day overwrites the same path.
package partition

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	ing "github.com/wdm0006/ingot/pkg/ingot"
	"github.com/wdm0006/ingot/pkg/io/csvio"
	"github.com/wdm0006/ingot/pkg/io/parquetio"
)

// Format selects the on-disk rendition of a partition file.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// Writer resolves partitioned output paths and serializes frames to them.
type Writer struct {
	BaseDir      string
	PartitionKey string
	Delimiter    rune   // 0 = ';'
	Encoding     string // "" = utf-8
	Format       Format // "" = csv

	// Now supplies the partition date; nil means time.Now.
	Now func() time.Time
}

// PartitionValue is today's date in YYYYMMDD form.
func (w *Writer) PartitionValue() string {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	return now().Format("20060102")
}

// Path resolves base_dir/table/partition_key=YYYYMMDD/filename without
// touching the filesystem.
func (w *Writer) Path(table, filename string) string {
	part := fmt.Sprintf("%s=%s", w.PartitionKey, w.PartitionValue())
	return filepath.Join(w.BaseDir, table, part, filename)
}

// Write serializes f under the resolved partition path, creating
// intermediate directories and overwriting any previous file at that exact
// path. It returns the resolved path.
func (w *Writer) Write(f *ing.Frame, table, filename string) (string, error) {
	out := w.Path(table, filename)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	switch w.Format {
	case "", FormatCSV:
		if err := csvio.WriteAll(out, f, csvio.WriterOptions{Delimiter: w.Delimiter, Encoding: w.Encoding}); err != nil {
			return "", err
		}
	case FormatParquet:
		if err := parquetio.WriteAll(out, f); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported output format %q", w.Format)
	}
	return out, nil
}
