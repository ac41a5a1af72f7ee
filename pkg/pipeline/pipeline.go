// Package pipeline orchestrates one ingestion run end to end: acquire raw
// rows, normalize column names, cast and validate against the declared
// schema, preview, write the partitioned file and its manifest. Any
// failing step aborts the run; the manifest is only ever written after
// the data file it describes.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	ing "github.com/wdm0006/ingot/pkg/ingot"
	"github.com/wdm0006/ingot/pkg/config"
)

// tableSteps is the fixed normalization sequence shared by both sources:
// rename to canonical names, require, cast, revalidate kinds.
func tableSteps(rename map[string]string, schema config.FieldsConfig) *ing.Pipeline {
	return ing.NewPipeline().
		Add(&ing.RenameStep{Mapping: rename}).
		Add(&ing.RequireStep{Columns: schema.RequiredColumns}).
		Add(&ing.CastStep{
			IntFields:    schema.IntegerFields,
			StringFields: schema.StringFields,
			FloatFields:  schema.FloatFields,
		}).
		Add(&ing.CheckKindsStep{
			IntFields:    schema.IntegerFields,
			StringFields: schema.StringFields,
			FloatFields:  schema.FloatFields,
		})
}

// extraColumnsStep warns about columns outside the declared schema. They
// are kept, not dropped.
type extraColumnsStep struct {
	schema config.FieldsConfig
	logger *slog.Logger
}

func (t *extraColumnsStep) Name() string { return "warn_extra_columns" }

func (t *extraColumnsStep) Apply(ctx context.Context, f *ing.Frame) (*ing.Frame, error) {
	declared := make(map[string]bool)
	for _, group := range [][]string{
		t.schema.RequiredColumns,
		t.schema.IntegerFields,
		t.schema.StringFields,
		t.schema.FloatFields,
	} {
		for _, name := range group {
			declared[name] = true
		}
	}
	var extras []string
	for _, name := range f.ColumnNames() {
		if !declared[name] {
			extras = append(extras, name)
		}
	}
	if len(extras) > 0 {
		t.logger.Warn("colunas adicionais encontradas (serão mantidas)", "colunas", extras)
	}
	return f, nil
}

// printPreview renders the first rows of the selected columns for human
// inspection. Every preview column must exist.
func printPreview(w io.Writer, f *ing.Frame, columns []string, n int) error {
	var missing []string
	for _, c := range columns {
		if !f.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &ing.SchemaError{Missing: missing}
	}
	if len(columns) == 0 {
		columns = f.ColumnNames()
	}
	if n > f.Rows() {
		n = f.Rows()
	}
	fmt.Fprintln(w, strings.Join(columns, " | "))
	if n == 0 {
		fmt.Fprintln(w, "(nenhuma linha)")
		return nil
	}
	for r := 0; r < n; r++ {
		cells := make([]string, len(columns))
		for i, name := range columns {
			if v, ok := f.Value(r, name); ok {
				cells[i] = fmt.Sprintf("%v", v)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, " | "))
	}
	return nil
}
