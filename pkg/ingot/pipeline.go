package ingot

import "context"

// Transform is a mutation or validation applied to a Frame.
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *Frame) (*Frame, error)
}

// Pipeline composes a sequence of Transforms. The first failing step
// aborts the run.
type Pipeline struct {
	steps []Transform
}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(t Transform) *Pipeline {
	p.steps = append(p.steps, t)
	return p
}

func (p *Pipeline) Run(ctx context.Context, f *Frame) (*Frame, error) {
	var err error
	cur := f
	for _, t := range p.steps {
		cur, err = t.Apply(ctx, cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// RenameStep maps raw column names to their canonical schema names.
type RenameStep struct{ Mapping map[string]string }

func (t *RenameStep) Name() string { return "rename" }

func (t *RenameStep) Apply(ctx context.Context, f *Frame) (*Frame, error) {
	if len(t.Mapping) == 0 {
		return f, nil
	}
	return f.Rename(t.Mapping), nil
}

// RequireStep fails when any required column is absent.
type RequireStep struct{ Columns []string }

func (t *RequireStep) Name() string { return "require_columns" }

func (t *RequireStep) Apply(ctx context.Context, f *Frame) (*Frame, error) {
	if err := EnsureRequiredColumns(f, t.Columns); err != nil {
		return nil, err
	}
	return f, nil
}

// CastStep applies the schema-declared casts.
type CastStep struct {
	IntFields    []string
	StringFields []string
	FloatFields  []string
}

func (t *CastStep) Name() string { return "apply_casts" }

func (t *CastStep) Apply(ctx context.Context, f *Frame) (*Frame, error) {
	return ApplyCasts(f, t.IntFields, t.StringFields, t.FloatFields), nil
}

// CheckKindsStep revalidates column kinds after the casts ran.
type CheckKindsStep struct {
	IntFields    []string
	StringFields []string
	FloatFields  []string
}

func (t *CheckKindsStep) Name() string { return "check_kinds" }

func (t *CheckKindsStep) Apply(ctx context.Context, f *Frame) (*Frame, error) {
	if err := CheckKinds(f, t.IntFields, t.StringFields, t.FloatFields); err != nil {
		return nil, err
	}
	return f, nil
}
