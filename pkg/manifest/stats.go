package manifest

import (
	ing "github.com/wdm0006/ingot/pkg/ingot"
)

// collectStats walks the frame once per requested member. Column order in
// colunas is the frame's insertion order.
func collectStats(f *ing.Frame, opt StatsOptions) SchemaStats {
	stats := SchemaStats{Columns: f.ColumnNames()}

	rows := f.Rows()
	stats.Rows = &rows

	if opt.Dtypes {
		stats.Dtypes = make(map[string]string, f.Cols())
		for _, cs := range f.Schema().Columns {
			stats.Dtypes[cs.Name] = cs.Type.DtypeName()
		}
	}
	if opt.Nulls {
		stats.Nulls = make(map[string]int, f.Cols())
		for _, cs := range f.Schema().Columns {
			stats.Nulls[cs.Name] = f.NullCount(cs.Name)
		}
	}
	if opt.Preview {
		n := opt.PreviewRows
		if n <= 0 {
			n = 3
		}
		stats.Preview = f.Records(n)
	}
	return stats
}
