package ingot

import "strconv"

// FrameFromRecords materializes decoded JSON rows into a Frame with the
// given column selection and order. JSON numbers arrive as float64 and
// build float columns; everything else is rendered as a string column.
// Keys absent from a record produce null cells, so ragged upstream data
// is tolerated (the schema validators decide whether that is fatal).
func FrameFromRecords(recs []map[string]any, columns []string) *Frame {
	kinds := make([]Kind, len(columns))
	for i, name := range columns {
		kinds[i] = KindString
		for _, rec := range recs {
			v, ok := rec[name]
			if !ok || v == nil {
				continue
			}
			if _, isNum := v.(float64); isNum {
				kinds[i] = KindFloat
			}
			break
		}
	}

	schema := Schema{Columns: make([]ColumnSchema, len(columns))}
	for i, name := range columns {
		schema.Columns[i] = ColumnSchema{Name: name, Type: kinds[i]}
	}
	f := NewFrame(schema)
	for _, rec := range recs {
		f.AppendNullRow()
		row := f.Rows() - 1
		for i, name := range columns {
			v, ok := rec[name]
			if !ok || v == nil {
				continue
			}
			switch kinds[i] {
			case KindFloat:
				if x, isNum := v.(float64); isNum {
					_ = f.SetCell(row, name, x)
				}
			default:
				_ = f.SetCell(row, name, asString(v))
			}
		}
	}
	return f
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
