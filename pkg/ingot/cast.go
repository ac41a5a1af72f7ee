package ingot

import (
	"math"
	"strconv"
	"strings"
)

// ApplyCasts coerces the declared columns of f to their target kinds and
// returns the result as a new Frame. Columns not named by any field list
// are shared untouched; declared columns absent from f are skipped.
//
// Casting never fails: cells that cannot be parsed become null. Structural
// problems (a whole column of the wrong kind) are for CheckKinds to report
// afterwards.
func ApplyCasts(f *Frame, intFields, strFields, floatFields []string) *Frame {
	target := make(map[string]Kind)
	for _, n := range intFields {
		target[n] = KindInt
	}
	for _, n := range strFields {
		target[n] = KindString
	}
	for _, n := range floatFields {
		target[n] = KindFloat
	}

	cols := make([]Column, f.Cols())
	for i, cs := range f.Schema().Columns {
		c, _ := f.ColumnByName(cs.Name)
		switch target[cs.Name] {
		case KindInt:
			cols[i] = castInt(c)
		case KindString:
			cols[i] = castString(c)
		case KindFloat:
			cols[i] = castFloat(c)
		default:
			cols[i] = c
		}
	}
	return fromColumns(cols)
}

// castInt parses each value as a number and keeps it when it has an exact
// integer representation; anything else becomes null.
func castInt(c Column) *IntColumn {
	out := NewIntColumn(c.Name(), 0)
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			out.AppendNull()
			continue
		}
		switch col := c.(type) {
		case *IntColumn:
			v, _ := col.Get(i)
			out.Append(v)
		case *FloatColumn:
			v, _ := col.Get(i)
			if v == math.Trunc(v) && !math.IsInf(v, 0) {
				out.Append(int64(v))
			} else {
				out.AppendNull()
			}
		case *StringColumn:
			s, _ := col.Get(i)
			s = strings.TrimSpace(s)
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				out.Append(n)
				continue
			}
			if v, err := strconv.ParseFloat(s, 64); err == nil && v == math.Trunc(v) && !math.IsInf(v, 0) {
				out.Append(int64(v))
				continue
			}
			out.AppendNull()
		default:
			out.AppendNull()
		}
	}
	return out
}

// castString renders each value as text, trims outer whitespace and strips
// at most one leading and one trailing double quote.
func castString(c Column) *StringColumn {
	out := NewStringColumn(c.Name(), 0)
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			out.AppendNull()
			continue
		}
		var s string
		switch col := c.(type) {
		case *StringColumn:
			s, _ = col.Get(i)
		case *IntColumn:
			v, _ := col.Get(i)
			s = strconv.FormatInt(v, 10)
		case *FloatColumn:
			v, _ := col.Get(i)
			s = strconv.FormatFloat(v, 'g', -1, 64)
		}
		s = strings.TrimSpace(s)
		s = strings.TrimPrefix(s, `"`)
		s = strings.TrimSuffix(s, `"`)
		out.Append(s)
	}
	return out
}

// castFloat passes numeric columns through as float64. String columns are
// read as locale-formatted decimals: "." is the thousands separator and
// "," the decimal separator, so "1.234,56" parses to 1234.56.
func castFloat(c Column) *FloatColumn {
	out := NewFloatColumn(c.Name(), 0)
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			out.AppendNull()
			continue
		}
		switch col := c.(type) {
		case *FloatColumn:
			v, _ := col.Get(i)
			out.Append(v)
		case *IntColumn:
			v, _ := col.Get(i)
			out.Append(float64(v))
		case *StringColumn:
			s, _ := col.Get(i)
			s = strings.TrimSpace(s)
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				out.Append(v)
			} else {
				out.AppendNull()
			}
		default:
			out.AppendNull()
		}
	}
	return out
}
