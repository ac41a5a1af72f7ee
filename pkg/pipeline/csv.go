package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/wdm0006/ingot/pkg/config"
	ing "github.com/wdm0006/ingot/pkg/ingot"
	"github.com/wdm0006/ingot/pkg/io/csvio"
	"github.com/wdm0006/ingot/pkg/io/partition"
	"github.com/wdm0006/ingot/pkg/manifest"
)

// CSV ingests one delimited flat file into the bronze layer.
type CSV struct {
	Cfg    *config.CSVRunConfig
	Logger *slog.Logger
	Out    io.Writer        // preview destination; nil = stdout
	Now    func() time.Time // partition clock; nil = time.Now
}

func (p *CSV) Run(ctx context.Context) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	cfg := p.Cfg
	runID := uuid.NewString()
	logger = logger.With("run_id", runID, "dataset", cfg.Dataset)
	logger.Info("ingestão csv iniciada", "path", cfg.CSV.Path)

	raw, err := csvio.ReadAll(cfg.CSV.Path, csvio.ReaderOptions{
		HasHeader: cfg.CSV.Header(),
		Delimiter: rune(cfg.CSV.Delimiter[0]),
		Encoding:  cfg.CSV.Encoding,
	})
	if err != nil {
		return err
	}
	logger.Info("arquivo lido", "linhas", raw.Rows(), "colunas", raw.Cols())

	steps := ing.NewPipeline().
		Add(&ing.RenameStep{Mapping: cfg.ColumnsNormalization}).
		Add(&extraColumnsStep{schema: cfg.Schema, logger: logger}).
		Add(&ing.RequireStep{Columns: cfg.Schema.RequiredColumns}).
		Add(&ing.CastStep{
			IntFields:    cfg.Schema.IntegerFields,
			StringFields: cfg.Schema.StringFields,
			FloatFields:  cfg.Schema.FloatFields,
		}).
		Add(&ing.CheckKindsStep{
			IntFields:    cfg.Schema.IntegerFields,
			StringFields: cfg.Schema.StringFields,
			FloatFields:  cfg.Schema.FloatFields,
		})
	df, err := steps.Run(ctx, raw)
	if err != nil {
		return err
	}

	if err := printPreview(out, df, cfg.PreviewColumns, cfg.PreviewRows); err != nil {
		return err
	}

	pw := &partition.Writer{
		BaseDir:      cfg.Output.BaseDir,
		PartitionKey: cfg.Output.PartitionKey,
		Delimiter:    rune(cfg.Output.CSVDelimiter[0]),
		Encoding:     cfg.Output.Encoding,
		Format:       partition.Format(cfg.Output.Format),
		Now:          p.Now,
	}
	path, err := pw.Write(df, cfg.Output.Table, cfg.Output.Filename)
	if err != nil {
		return err
	}
	logger.Info("arquivo salvo", "path", path)

	info := manifest.DatasetInfo{
		Dataset:        cfg.Dataset,
		Origin:         "csv",
		Endpoint:       cfg.CSV.Path,
		Delimiter:      cfg.Output.CSVDelimiter,
		Encoding:       cfg.Output.Encoding,
		PartitionKey:   cfg.Output.PartitionKey,
		PartitionValue: pw.PartitionValue(),
		RunID:          runID,
		Producer:       cfg.Producer,
	}
	mpath, err := manifest.WriteFromFrame(df, path, info, manifest.DefaultStatsOptions(), nil)
	if err != nil {
		return err
	}
	logger.Info("manifest gerado", "path", mpath)
	return nil
}
