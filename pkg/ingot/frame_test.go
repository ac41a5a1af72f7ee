package ingot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRenamePreservesOrderAndData(t *testing.T) {
	f := NewFrame(Schema{Columns: []ColumnSchema{
		{Name: "id", Type: KindInt},
		{Name: "name", Type: KindString},
	}})
	f.AppendNullRow()
	require.NoError(t, f.SetCell(0, "id", int64(1)))
	require.NoError(t, f.SetCell(0, "name", "ana"))

	out := f.Rename(map[string]string{"id": "user_id", "name": "nome"})
	assert.Equal(t, []string{"user_id", "nome"}, out.ColumnNames())
	assert.Equal(t, []string{"id", "name"}, f.ColumnNames(), "receiver unchanged")

	v, ok := out.Value(0, "nome")
	require.True(t, ok)
	assert.Equal(t, "ana", v)
	v, ok = out.Value(0, "user_id")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
}

func TestFrameNullCount(t *testing.T) {
	f := NewFrame(Schema{Columns: []ColumnSchema{{Name: "x", Type: KindFloat}}})
	for i := 0; i < 4; i++ {
		f.AppendNullRow()
	}
	require.NoError(t, f.SetCell(1, "x", 1.5))
	assert.Equal(t, 3, f.NullCount("x"))
	assert.Equal(t, 0, f.NullCount("nope"))
}

func TestFrameRecords(t *testing.T) {
	f := NewFrame(Schema{Columns: []ColumnSchema{
		{Name: "a", Type: KindInt},
		{Name: "b", Type: KindString},
	}})
	f.AppendNullRow()
	f.AppendNullRow()
	require.NoError(t, f.SetCell(0, "a", int64(10)))
	require.NoError(t, f.SetCell(0, "b", "foo"))

	recs := f.Records(-1)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(10), recs[0]["a"])
	assert.Equal(t, "foo", recs[0]["b"])
	assert.Nil(t, recs[1]["a"], "null cells map to nil")

	assert.Len(t, f.Records(1), 1)
	assert.Len(t, f.Records(5), 2, "n capped at row count")
}

func TestFrameFromRecords(t *testing.T) {
	recs := []map[string]any{
		{"id": float64(1), "name": "ana", "email": "a@x"},
		{"id": float64(2), "name": "bia"}, // email missing
	}
	f := FrameFromRecords(recs, []string{"id", "name", "email"})

	assert.Equal(t, []string{"id", "name", "email"}, f.ColumnNames())
	assert.Equal(t, 2, f.Rows())

	idCol, _ := f.ColumnByName("id")
	assert.Equal(t, KindFloat, idCol.Kind(), "json numbers arrive as float64")
	v, ok := f.Value(1, "id")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
	_, ok = f.Value(1, "email")
	assert.False(t, ok, "absent key is a null cell")
}
