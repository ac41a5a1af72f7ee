// Package manifest emits the sidecar JSON document that describes every
// written data file: integrity hash, byte size, provenance and basic
// schema statistics. The JSON field names are the contract consumed by
// downstream jobs and must not change.
package manifest

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	ing "github.com/wdm0006/ingot/pkg/ingot"
	iox "github.com/wdm0006/ingot/pkg/io/ioutils"
)

// Suffix is appended to the data file path to form the manifest path.
const Suffix = ".manifest.json"

// timeNow is swapped in tests.
var timeNow = time.Now

// CoreInfo is the immutable snapshot of a written file, taken once at
// manifest-write time.
type CoreInfo struct {
	File      string `json:"arquivo"`
	Dir       string `json:"diretorio"`
	SizeBytes int64  `json:"tamanho_bytes"`
	MD5       string `json:"hash_md5"`
	CreatedAt string `json:"gerado_em"`
}

// DatasetInfo is the provenance record supplied by the pipeline. Empty
// fields serialize as null.
type DatasetInfo struct {
	Dataset        string
	Origin         string // "api" | "csv"
	Endpoint       string
	Delimiter      string
	Encoding       string
	PartitionKey   string
	PartitionValue string
	RunID          string
	Producer       string
}

func (d DatasetInfo) MarshalJSON() ([]byte, error) {
	aux := struct {
		Dataset        *string `json:"dataset"`
		Origin         *string `json:"origem"`
		Endpoint       *string `json:"endpoint"`
		Delimiter      *string `json:"delimitador"`
		Encoding       *string `json:"encoding"`
		PartitionKey   *string `json:"partition_key"`
		PartitionValue *string `json:"partition_value"`
		RunID          *string `json:"run_id"`
		Producer       *string `json:"producer"`
	}{
		Dataset:        nullable(d.Dataset),
		Origin:         nullable(d.Origin),
		Endpoint:       nullable(d.Endpoint),
		Delimiter:      nullable(d.Delimiter),
		Encoding:       nullable(d.Encoding),
		PartitionKey:   nullable(d.PartitionKey),
		PartitionValue: nullable(d.PartitionValue),
		RunID:          nullable(d.RunID),
		Producer:       nullable(d.Producer),
	}
	return json.Marshal(aux)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SchemaStats summarizes the dataset behind the file. Optional members
// are null when their collection was not requested.
type SchemaStats struct {
	Columns []string         `json:"colunas"`
	Dtypes  map[string]string `json:"dtypes"`
	Rows    *int              `json:"linhas"`
	Nulls   map[string]int    `json:"nulos"`
	Preview []map[string]any  `json:"preview"`
}

// Manifest is the document written next to every data file. Write-once;
// this system never reads it back.
type Manifest struct {
	Core    CoreInfo       `json:"core"`
	Dataset DatasetInfo    `json:"dataset"`
	Stats   SchemaStats    `json:"schema_stats"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// StatsOptions toggle the optional schema_stats members.
type StatsOptions struct {
	Dtypes      bool
	Nulls       bool
	Preview     bool
	PreviewRows int
}

// DefaultStatsOptions enable dtypes and null counts; previews are opt-in.
func DefaultStatsOptions() StatsOptions {
	return StatsOptions{Dtypes: true, Nulls: true, PreviewRows: 3}
}

// WriteFromFrame writes path+".manifest.json" describing the file at path
// using the in-memory dataset for the statistics. The data file must
// already exist: a manifest always describes a persisted artifact. The
// optional extra mapping is emitted only when non-empty.
func WriteFromFrame(f *ing.Frame, path string, info DatasetInfo, opt StatsOptions, extra map[string]any) (string, error) {
	core, err := coreInfo(path)
	if err != nil {
		return "", err
	}
	m := Manifest{Core: core, Dataset: info, Stats: collectStats(f, opt)}
	return writeManifest(path, m, extra)
}

// FileOptions control the frame-less manifest entry point.
type FileOptions struct {
	Header       bool
	InferColumns bool
	CountRows    bool
}

// DefaultFileOptions assume a header row and enable both inferences.
func DefaultFileOptions() FileOptions {
	return FileOptions{Header: true, InferColumns: true, CountRows: true}
}

// WriteFromFile writes the same manifest shape without loading the data
// into memory: columns come from the first line (when the delimiter and
// header flag are known) and the row count from a streaming newline count,
// decremented by one when a header line is present.
func WriteFromFile(path string, info DatasetInfo, opt FileOptions, extra map[string]any) (string, error) {
	core, err := coreInfo(path)
	if err != nil {
		return "", err
	}

	cols := []string{}
	if opt.InferColumns && opt.Header && info.Delimiter != "" {
		if first, err := readFirstLine(path, info.Encoding); err == nil {
			for _, c := range strings.Split(first, info.Delimiter) {
				cols = append(cols, strings.TrimSpace(c))
			}
		}
	}

	var rows *int
	if opt.CountRows {
		n, err := countLines(path)
		if err != nil {
			return "", err
		}
		if opt.Header && n > 0 {
			n--
		}
		rows = &n
	}

	m := Manifest{
		Core:    core,
		Dataset: info,
		Stats:   SchemaStats{Columns: cols, Rows: rows},
	}
	return writeManifest(path, m, extra)
}

func coreInfo(path string) (CoreInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CoreInfo{}, &ing.NotFoundError{What: "arquivo para manifest: " + path}
		}
		return CoreInfo{}, err
	}
	sum, err := md5sum(path)
	if err != nil {
		return CoreInfo{}, err
	}
	return CoreInfo{
		File:      filepath.Base(path),
		Dir:       filepath.Dir(path),
		SizeBytes: st.Size(),
		MD5:       sum,
		CreatedAt: timeNow().Format("2006-01-02T15:04:05"),
	}, nil
}

// md5sum streams the file through MD5 in fixed-size chunks; the result
// equals the byte-for-byte MD5 of the whole file.
func md5sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := md5.New()
	buf := make([]byte, 1<<20)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func readFirstLine(path, encoding string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	dec, err := iox.DecodeReader(f, encoding)
	if err != nil {
		return "", err
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if sc.Scan() {
		return strings.TrimRight(sc.Text(), "\r"), nil
	}
	return "", sc.Err()
}

// countLines counts newline-terminated lines plus a trailing unterminated
// one, without loading the file into memory.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	buf := make([]byte, 64*1024)
	count := 0
	lastByte := byte('\n')
	for {
		n, err := f.Read(buf)
		for _, b := range buf[:n] {
			if b == '\n' {
				count++
			}
		}
		if n > 0 {
			lastByte = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if lastByte != '\n' {
		count++
	}
	return count, nil
}

func writeManifest(path string, m Manifest, extra map[string]any) (string, error) {
	if len(extra) > 0 {
		m.Extra = extra
	}
	out := path + Suffix
	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", err
	}
	return out, nil
}
