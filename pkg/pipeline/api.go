package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/wdm0006/ingot/pkg/config"
	"github.com/wdm0006/ingot/pkg/fetch"
	ing "github.com/wdm0006/ingot/pkg/ingot"
	"github.com/wdm0006/ingot/pkg/io/partition"
	"github.com/wdm0006/ingot/pkg/manifest"
)

// API ingests the users collection and the posts of one target user from
// the upstream REST source into two bronze tables.
type API struct {
	Cfg    *config.APIRunConfig
	Client *fetch.Client // nil = built from Cfg timeout/retries
	Logger *slog.Logger
	Out    io.Writer        // preview destination; nil = stdout
	Now    func() time.Time // partition clock; nil = time.Now
}

func (p *API) Run(ctx context.Context) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	cfg := p.Cfg
	client := p.Client
	if client == nil {
		client = fetch.New(time.Duration(cfg.API.TimeoutSeconds)*time.Second, cfg.API.Retries)
	}
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	usersURL := cfg.API.BaseURL + cfg.API.Endpoints.Users
	postsURL := cfg.API.BaseURL + cfg.API.Endpoints.Posts

	logger.Info("buscando usuários", "url", usersURL)
	rows, err := client.Rows(ctx, usersURL, nil)
	if err != nil {
		return err
	}
	users, err := tableSteps(cfg.Users.Rename, cfg.Users.Schema).
		Run(ctx, ing.FrameFromRecords(rows, cfg.Users.Columns))
	if err != nil {
		return err
	}
	logger.Info("usuários validados", "linhas", users.Rows())

	userID, err := lookupUserID(users, cfg.Logic.LookupColumn, cfg.Logic.UserTarget, cfg.Logic.IDColumn)
	if err != nil {
		return err
	}

	logger.Info("buscando posts", "url", postsURL, "user_id", userID)
	params := map[string]string{cfg.Logic.PostsParam: strconv.FormatInt(userID, 10)}
	rows, err = client.Rows(ctx, postsURL, params)
	if err != nil {
		return err
	}
	posts, err := tableSteps(cfg.Posts.Rename, cfg.Posts.Schema).
		Run(ctx, ing.FrameFromRecords(rows, cfg.Posts.Columns))
	if err != nil {
		return err
	}
	logger.Info("posts validados", "linhas", posts.Rows())

	if err := printPreview(out, users, nil, 10); err != nil {
		return err
	}
	if err := printPreview(out, posts, nil, 10); err != nil {
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

	if err := p.persist(pw, logger, runID, users, cfg.Users, usersURL, nil); err != nil {
		return err
	}
	extra := map[string]any{"user_id": userID}
	postsEndpoint := fmt.Sprintf("%s?%s=%d", postsURL, cfg.Logic.PostsParam, userID)
	return p.persist(pw, logger, runID, posts, cfg.Posts, postsEndpoint, extra)
}

// persist writes one table and, strictly afterwards, its manifest.
func (p *API) persist(pw *partition.Writer, logger *slog.Logger, runID string, f *ing.Frame, t config.APITableConfig, endpoint string, extra map[string]any) error {
	path, err := pw.Write(f, t.Table, t.Filename)
	if err != nil {
		return err
	}
	logger.Info("arquivo salvo", "dataset", t.Dataset, "path", path)

	info := manifest.DatasetInfo{
		Dataset:        t.Dataset,
		Origin:         "api",
		Endpoint:       endpoint,
		Delimiter:      p.Cfg.Output.CSVDelimiter,
		Encoding:       p.Cfg.Output.Encoding,
		PartitionKey:   p.Cfg.Output.PartitionKey,
		PartitionValue: pw.PartitionValue(),
		RunID:          runID,
		Producer:       p.Cfg.Producer,
	}
	mpath, err := manifest.WriteFromFrame(f, path, info, manifest.DefaultStatsOptions(), extra)
	if err != nil {
		return err
	}
	logger.Info("manifest gerado", "path", mpath)
	return nil
}

// lookupUserID resolves the target user's id by exact name match.
func lookupUserID(users *ing.Frame, lookupCol, target, idCol string) (int64, error) {
	nameCol, ok := users.ColumnByName(lookupCol)
	if !ok {
		return 0, &ing.SchemaError{Missing: []string{lookupCol}}
	}
	names, ok := nameCol.(*ing.StringColumn)
	if !ok {
		return 0, &ing.SchemaError{Mismatches: []ing.Mismatch{{
			Column:   lookupCol,
			Expected: ing.KindString.DtypeName(),
			Actual:   nameCol.Kind().DtypeName(),
		}}}
	}
	for i := 0; i < names.Len(); i++ {
		v, valid := names.Get(i)
		if !valid || v != target {
			continue
		}
		if id, ok := users.Value(i, idCol); ok {
			if n, isInt := id.(int64); isInt {
				return n, nil
			}
			if x, isFloat := id.(float64); isFloat {
				return int64(x), nil
			}
		}
	}
	return 0, &ing.NotFoundError{What: fmt.Sprintf("usuário %q", target)}
}
