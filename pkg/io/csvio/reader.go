package csvio

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	ing "github.com/wdm0006/ingot/pkg/ingot"
	iox "github.com/wdm0006/ingot/pkg/io/ioutils"
)

// ReaderOptions configure how a delimited source file is read.
type ReaderOptions struct {
	HasHeader bool
	Delimiter rune   // 0 = ';'
	Encoding  string // "" = utf-8
}

// ReadAll loads a delimited file into a Frame of raw string columns.
// Types are not inferred here: they come from the declared schema and are
// applied afterwards by the caster. Empty cells become nulls.
// Gzip-compressed inputs are handled transparently.
func ReadAll(path string, opt ReaderOptions) (*ing.Frame, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	dec, err := iox.DecodeReader(rc, opt.Encoding)
	if err != nil {
		return nil, err
	}
	rr := csv.NewReader(dec)
	rr.Comma = ';'
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	rr.LazyQuotes = true
	rr.ReuseRecord = true

	rec, err := rr.Read()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(rec))
	if opt.HasHeader {
		for i := range rec {
			names[i] = strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\uFEFF")
		}
	} else {
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	schema := ing.Schema{Columns: make([]ing.ColumnSchema, len(names))}
	for i, name := range names {
		schema.Columns[i] = ing.ColumnSchema{Name: name, Type: ing.KindString}
	}
	f := ing.NewFrame(schema)

	appendRecord := func(rec []string) {
		f.AppendNullRow()
		row := f.Rows() - 1
		for i, name := range names {
			if i >= len(rec) {
				break // short record: trailing cells stay null
			}
			val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
			if val == "" {
				continue
			}
			_ = f.SetCell(row, name, val)
		}
	}

	if !opt.HasHeader {
		appendRecord(rec)
	}
	for {
		rec, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		appendRecord(rec)
	}
	return f, nil
}
