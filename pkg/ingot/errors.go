package ingot

import (
	"fmt"
	"strings"
)

// Mismatch records one column whose post-cast kind differs from the
// declared category.
type Mismatch struct {
	Column   string
	Expected string
	Actual   string
}

// SchemaError reports structural problems with a dataset: required
// columns that are absent, or declared columns whose post-cast kind is
// wrong. Every offending column is collected before the error is raised,
// so callers can program against the lists instead of parsing the message.
type SchemaError struct {
	Missing    []string
	Mismatches []Mismatch
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("colunas ausentes: [%s]", strings.Join(e.Missing, ", "))
	}
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = fmt.Sprintf("%s esperado %s, encontrado %s", m.Column, m.Expected, m.Actual)
	}
	return "tipos incorretos após cast: " + strings.Join(parts, "; ")
}

// NotFoundError reports a missing target: a data file that should already
// exist on disk, or a looked-up entity absent from the fetched dataset.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string { return "não encontrado: " + e.What }

// ConfigError reports a malformed or inconsistent run configuration,
// detected once at load time.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuração inválida: %s: %v", e.Reason, e.Err)
	}
	return "configuração inválida: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UpstreamError reports a failed or malformed response from an upstream
// HTTP source.
type UpstreamError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("falha ao chamar %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("falha ao chamar %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
