package ingot

// EnsureRequiredColumns fails with a *SchemaError naming every required
// column absent from f, not just the first one found.
func EnsureRequiredColumns(f *Frame, required []string) error {
	var missing []string
	for _, name := range required {
		if !f.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// CheckKinds verifies that every declared column present in f carries the
// expected post-cast kind. All mismatches are collected into a single
// *SchemaError. Declared columns absent from f are skipped, matching the
// permissive maybe-missing input policy of the casts.
func CheckKinds(f *Frame, intFields, strFields, floatFields []string) error {
	var wrong []Mismatch
	check := func(names []string, want Kind) {
		for _, name := range names {
			c, ok := f.ColumnByName(name)
			if !ok {
				continue
			}
			if c.Kind() != want {
				wrong = append(wrong, Mismatch{
					Column:   name,
					Expected: want.DtypeName(),
					Actual:   c.Kind().DtypeName(),
				})
			}
		}
	}
	check(intFields, KindInt)
	check(strFields, KindString)
	check(floatFields, KindFloat)
	if len(wrong) > 0 {
		return &SchemaError{Mismatches: wrong}
	}
	return nil
}
