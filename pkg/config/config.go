// Package config loads and validates the typed run configuration. A run
// config is a plain document (JSON by default, YAML or TOML by file
// extension) validated once at load time; nothing downstream re-checks it.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	ing "github.com/wdm0006/ingot/pkg/ingot"
)

// FieldsConfig declares the schema of one table: which columns must be
// present and which target type each declared column carries.
type FieldsConfig struct {
	RequiredColumns []string `json:"required_columns" yaml:"required_columns" toml:"required_columns"`
	IntegerFields   []string `json:"integer_fields" yaml:"integer_fields" toml:"integer_fields"`
	StringFields    []string `json:"string_fields" yaml:"string_fields" toml:"string_fields"`
	FloatFields     []string `json:"float_fields" yaml:"float_fields" toml:"float_fields"`
}

// CSVSourceConfig describes the delimited input file.
type CSVSourceConfig struct {
	Path      string `json:"path" yaml:"path" toml:"path"`
	Delimiter string `json:"delimiter" yaml:"delimiter" toml:"delimiter"`
	Encoding  string `json:"encoding" yaml:"encoding" toml:"encoding"`
	HasHeader *bool  `json:"has_header" yaml:"has_header" toml:"has_header"`
}

// Header defaults to true when unset.
func (c *CSVSourceConfig) Header() bool { return c.HasHeader == nil || *c.HasHeader }

// CSVOutputConfig describes where and how the ingested table is written.
type CSVOutputConfig struct {
	BaseDir      string `json:"base_dir" yaml:"base_dir" toml:"base_dir"`
	Table        string `json:"table" yaml:"table" toml:"table"`
	PartitionKey string `json:"partition_key" yaml:"partition_key" toml:"partition_key"`
	Filename     string `json:"filename" yaml:"filename" toml:"filename"`
	CSVDelimiter string `json:"csv_delimiter" yaml:"csv_delimiter" toml:"csv_delimiter"`
	Encoding     string `json:"encoding" yaml:"encoding" toml:"encoding"`
	Index        bool   `json:"index" yaml:"index" toml:"index"`
	Format       string `json:"format" yaml:"format" toml:"format"`
}

// CSVRunConfig drives one flat-file ingestion run.
type CSVRunConfig struct {
	Dataset              string            `json:"dataset" yaml:"dataset" toml:"dataset"`
	Producer             string            `json:"producer" yaml:"producer" toml:"producer"`
	CSV                  CSVSourceConfig   `json:"csv" yaml:"csv" toml:"csv"`
	Schema               FieldsConfig      `json:"schema" yaml:"schema" toml:"schema"`
	Output               CSVOutputConfig   `json:"output" yaml:"output" toml:"output"`
	ColumnsNormalization map[string]string `json:"columns_normalization" yaml:"columns_normalization" toml:"columns_normalization"`
	PreviewColumns       []string          `json:"preview_columns" yaml:"preview_columns" toml:"preview_columns"`
	PreviewRows          int               `json:"preview_rows" yaml:"preview_rows" toml:"preview_rows"`
}

// APITableConfig declares how one fetched collection becomes a table:
// raw column selection and order, canonical renaming, declared schema
// and output naming.
type APITableConfig struct {
	Columns  []string          `json:"columns" yaml:"columns" toml:"columns"`
	Rename   map[string]string `json:"rename" yaml:"rename" toml:"rename"`
	Schema   FieldsConfig      `json:"schema" yaml:"schema" toml:"schema"`
	Table    string            `json:"table" yaml:"table" toml:"table"`
	Filename string            `json:"filename" yaml:"filename" toml:"filename"`
	Dataset  string            `json:"dataset" yaml:"dataset" toml:"dataset"`
}

// APISourceConfig describes the upstream REST endpoints.
type APISourceConfig struct {
	BaseURL   string `json:"base_url" yaml:"base_url" toml:"base_url"`
	Endpoints struct {
		Users string `json:"users" yaml:"users" toml:"users"`
		Posts string `json:"posts" yaml:"posts" toml:"posts"`
	} `json:"endpoints" yaml:"endpoints" toml:"endpoints"`
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	Retries        int `json:"retries" yaml:"retries" toml:"retries"`
}

// APIOutputConfig shares the partition settings of both API tables.
type APIOutputConfig struct {
	BaseDir      string `json:"base_dir" yaml:"base_dir" toml:"base_dir"`
	PartitionKey string `json:"partition_key" yaml:"partition_key" toml:"partition_key"`
	CSVDelimiter string `json:"csv_delimiter" yaml:"csv_delimiter" toml:"csv_delimiter"`
	Encoding     string `json:"encoding" yaml:"encoding" toml:"encoding"`
	Index        bool   `json:"index" yaml:"index" toml:"index"`
	Format       string `json:"format" yaml:"format" toml:"format"`
}

// APIRunConfig drives one REST ingestion run (users plus the target
// user's posts).
type APIRunConfig struct {
	Producer string          `json:"producer" yaml:"producer" toml:"producer"`
	API      APISourceConfig `json:"api" yaml:"api" toml:"api"`
	Users    APITableConfig  `json:"users" yaml:"users" toml:"users"`
	Posts    APITableConfig  `json:"posts" yaml:"posts" toml:"posts"`
	Logic    struct {
		UserTarget   string `json:"user_target" yaml:"user_target" toml:"user_target"`
		LookupColumn string `json:"lookup_column" yaml:"lookup_column" toml:"lookup_column"`
		IDColumn     string `json:"id_column" yaml:"id_column" toml:"id_column"`
		PostsParam   string `json:"posts_param" yaml:"posts_param" toml:"posts_param"`
	} `json:"logic" yaml:"logic" toml:"logic"`
	Output APIOutputConfig `json:"output" yaml:"output" toml:"output"`
}

// LoadCSV reads, defaults and validates a flat-file run config.
func LoadCSV(path string) (*CSVRunConfig, error) {
	var cfg CSVRunConfig
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ";"
	}
	applyOutputDefaults(&cfg.Output.PartitionKey, &cfg.Output.CSVDelimiter, &cfg.Output.Encoding, &cfg.Output.Format)
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 10
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadAPI reads, defaults and validates a REST run config.
func LoadAPI(path string) (*APIRunConfig, error) {
	var cfg APIRunConfig
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 20
	}
	applyOutputDefaults(&cfg.Output.PartitionKey, &cfg.Output.CSVDelimiter, &cfg.Output.Encoding, &cfg.Output.Format)
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.Logic.LookupColumn == "" {
		cfg.Logic.LookupColumn = "nome"
	}
	if cfg.Logic.IDColumn == "" {
		cfg.Logic.IDColumn = "user_id"
	}
	if cfg.Logic.PostsParam == "" {
		cfg.Logic.PostsParam = "userId"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyOutputDefaults(partitionKey, delimiter, encoding, format *string) {
	if *partitionKey == "" {
		*partitionKey = "anomesdia"
	}
	if *delimiter == "" {
		*delimiter = ";"
	}
	if *encoding == "" {
		*encoding = "utf-8"
	}
	if *format == "" {
		*format = "csv"
	}
}

func decodeFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return &ing.ConfigError{Reason: "leitura de " + path, Err: err}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, v)
	case ".toml":
		err = toml.Unmarshal(b, v)
	default:
		err = json.Unmarshal(b, v)
	}
	if err != nil {
		return &ing.ConfigError{Reason: "decodificação de " + path, Err: err}
	}
	return nil
}

func (c *CSVRunConfig) validate() error {
	switch {
	case c.CSV.Path == "":
		return &ing.ConfigError{Reason: "csv.path é obrigatório"}
	case c.Output.BaseDir == "":
		return &ing.ConfigError{Reason: "output.base_dir é obrigatório"}
	case c.Output.Table == "":
		return &ing.ConfigError{Reason: "output.table é obrigatório"}
	case c.Output.Filename == "":
		return &ing.ConfigError{Reason: "output.filename é obrigatório"}
	case c.Output.Index:
		return &ing.ConfigError{Reason: "output.index: coluna de índice não é suportada"}
	}
	return validateFormat(c.Output.Format)
}

func (c *APIRunConfig) validate() error {
	switch {
	case c.API.BaseURL == "":
		return &ing.ConfigError{Reason: "api.base_url é obrigatório"}
	case c.API.Endpoints.Users == "":
		return &ing.ConfigError{Reason: "api.endpoints.users é obrigatório"}
	case c.API.Endpoints.Posts == "":
		return &ing.ConfigError{Reason: "api.endpoints.posts é obrigatório"}
	case c.Logic.UserTarget == "":
		return &ing.ConfigError{Reason: "logic.user_target é obrigatório"}
	case c.Output.BaseDir == "":
		return &ing.ConfigError{Reason: "output.base_dir é obrigatório"}
	case c.Output.Index:
		return &ing.ConfigError{Reason: "output.index: coluna de índice não é suportada"}
	}
	for name, t := range map[string]*APITableConfig{"users": &c.Users, "posts": &c.Posts} {
		if len(t.Columns) == 0 {
			return &ing.ConfigError{Reason: fmt.Sprintf("%s.columns é obrigatório", name)}
		}
		if t.Table == "" || t.Filename == "" {
			return &ing.ConfigError{Reason: fmt.Sprintf("%s.table e %s.filename são obrigatórios", name, name)}
		}
	}
	return validateFormat(c.Output.Format)
}

func validateFormat(format string) error {
	if format != "csv" && format != "parquet" {
		return &ing.ConfigError{Reason: fmt.Sprintf("output.format %q inválido (csv|parquet)", format)}
	}
	return nil
}
