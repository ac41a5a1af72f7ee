package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ing "github.com/wdm0006/ingot/pkg/ingot"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSVAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "run.json", `{
		"dataset": "ibc_municipios.indicadores",
		"csv": {"path": "in.txt"},
		"schema": {
			"required_columns": ["municipio", "uf"],
			"string_fields": ["municipio", "uf"],
			"float_fields": ["densidade_smp"]
		},
		"output": {"base_dir": "/data/bronze", "table": "indicadores", "filename": "indicadores.txt"},
		"columns_normalization": {"Município": "municipio"}
	}`)

	cfg, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.True(t, cfg.CSV.Header())
	assert.Equal(t, "anomesdia", cfg.Output.PartitionKey)
	assert.Equal(t, ";", cfg.Output.CSVDelimiter)
	assert.Equal(t, "utf-8", cfg.Output.Encoding)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, 10, cfg.PreviewRows)
	assert.Equal(t, "municipio", cfg.ColumnsNormalization["Município"])
}

func TestLoadCSVYAML(t *testing.T) {
	path := writeConfig(t, "run.yaml", `
dataset: d
csv:
  path: in.txt
  has_header: false
schema:
  required_columns: [a]
output:
  base_dir: /data
  table: t
  filename: f.txt
`)
	cfg, err := LoadCSV(path)
	require.NoError(t, err)
	assert.False(t, cfg.CSV.Header())
	assert.Equal(t, "in.txt", cfg.CSV.Path)
}

func TestLoadCSVTOML(t *testing.T) {
	path := writeConfig(t, "run.toml", `
dataset = "d"

[csv]
path = "in.txt"

[schema]
required_columns = ["a"]

[output]
base_dir = "/data"
table = "t"
filename = "f.txt"
`)
	cfg, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, "in.txt", cfg.CSV.Path)
	assert.Equal(t, []string{"a"}, cfg.Schema.RequiredColumns)
}

func TestLoadCSVValidation(t *testing.T) {
	cases := map[string]string{
		"missing path":     `{"output": {"base_dir": "b", "table": "t", "filename": "f"}}`,
		"missing base_dir": `{"csv": {"path": "p"}, "output": {"table": "t", "filename": "f"}}`,
		"index true":       `{"csv": {"path": "p"}, "output": {"base_dir": "b", "table": "t", "filename": "f", "index": true}}`,
		"bad format":       `{"csv": {"path": "p"}, "output": {"base_dir": "b", "table": "t", "filename": "f", "format": "orc"}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, "run.json", content)
			_, err := LoadCSV(path)
			var ce *ing.ConfigError
			require.ErrorAs(t, err, &ce)
		})
	}
}

func TestLoadCSVMalformedJSON(t *testing.T) {
	path := writeConfig(t, "run.json", `{"csv":`)
	_, err := LoadCSV(path)
	var ce *ing.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestLoadAPIAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "run.json", `{
		"api": {
			"base_url": "https://example.com/",
			"endpoints": {"users": "/users", "posts": "/posts"}
		},
		"users": {
			"columns": ["id", "name", "username", "email"],
			"rename": {"id": "user_id", "name": "nome", "username": "usuario"},
			"schema": {"required_columns": ["user_id", "nome"], "integer_fields": ["user_id"], "string_fields": ["nome", "usuario", "email"]},
			"table": "users", "filename": "users.txt", "dataset": "jsonplaceholder.users"
		},
		"posts": {
			"columns": ["userId", "id", "title", "body"],
			"rename": {"userId": "user_id", "id": "post_id", "title": "titulo", "body": "conteudo"},
			"schema": {"required_columns": ["user_id", "post_id"], "integer_fields": ["user_id", "post_id"], "string_fields": ["titulo", "conteudo"]},
			"table": "posts", "filename": "posts.txt", "dataset": "jsonplaceholder.posts"
		},
		"logic": {"user_target": "Ana Lima"},
		"output": {"base_dir": "/data/bronze"}
	}`)

	cfg, err := LoadAPI(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 20, cfg.API.TimeoutSeconds)
	assert.Equal(t, "nome", cfg.Logic.LookupColumn)
	assert.Equal(t, "user_id", cfg.Logic.IDColumn)
	assert.Equal(t, "userId", cfg.Logic.PostsParam)
	assert.Equal(t, "anomesdia", cfg.Output.PartitionKey)
}

func TestLoadAPIValidation(t *testing.T) {
	path := writeConfig(t, "run.json", `{
		"api": {"base_url": "https://example.com", "endpoints": {"users": "/users", "posts": "/posts"}},
		"users": {"columns": ["id"], "table": "users", "filename": "u.txt"},
		"posts": {"table": "posts", "filename": "p.txt"},
		"logic": {"user_target": "x"},
		"output": {"base_dir": "/data"}
	}`)
	_, err := LoadAPI(path)
	var ce *ing.ConfigError
	require.ErrorAs(t, err, &ce, "posts without columns must fail at load time")
}
