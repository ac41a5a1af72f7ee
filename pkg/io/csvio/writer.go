package csvio

import (
	"encoding/csv"
	"os"
	"strconv"

	ing "github.com/wdm0006/ingot/pkg/ingot"
	iox "github.com/wdm0006/ingot/pkg/io/ioutils"
)

// WriterOptions configure the delimited output rendition.
type WriterOptions struct {
	Delimiter rune   // 0 = ';'
	Encoding  string // "" = utf-8
}

// WriteAll writes a Frame as delimited text with a header row, "\n" line
// terminators and no index column, overwriting any file at path. Null
// cells are written as empty fields.
func WriteAll(path string, f *ing.Frame, opt WriterOptions) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	enc, err := iox.EncodeWriter(out, opt.Encoding)
	if err != nil {
		return err
	}
	w := csv.NewWriter(enc)
	w.Comma = ';'
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}

	hdr := make([]string, len(f.Schema().Columns))
	for i, cs := range f.Schema().Columns {
		hdr[i] = cs.Name
	}
	if err := w.Write(hdr); err != nil {
		return err
	}

	for r := 0; r < f.Rows(); r++ {
		row := make([]string, len(hdr))
		for c, cs := range f.Schema().Columns {
			col, _ := f.ColumnByName(cs.Name)
			switch cs.Type {
			case ing.KindFloat:
				if v, ok := col.(*ing.FloatColumn).Get(r); ok {
					row[c] = strconv.FormatFloat(v, 'g', -1, 64)
				}
			case ing.KindInt:
				if v, ok := col.(*ing.IntColumn).Get(r); ok {
					row[c] = strconv.FormatInt(v, 10)
				}
			case ing.KindString:
				if v, ok := col.(*ing.StringColumn).Get(r); ok {
					row[c] = v
				}
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return enc.Close()
}
