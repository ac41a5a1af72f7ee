package partition

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ing "github.com/wdm0006/ingot/pkg/ingot"
)

func fixedClock() time.Time {
	return time.Date(2025, 10, 20, 9, 30, 0, 0, time.Local)
}

func sampleFrame(t *testing.T) *ing.Frame {
	t.Helper()
	f := ing.NewFrame(ing.Schema{Columns: []ing.ColumnSchema{
		{Name: "user_id", Type: ing.KindInt},
		{Name: "nome", Type: ing.KindString},
	}})
	f.AppendNullRow()
	require.NoError(t, f.SetCell(0, "user_id", int64(1)))
	require.NoError(t, f.SetCell(0, "nome", "Ana"))
	return f
}

func TestWriterPathLayout(t *testing.T) {
	w := &Writer{BaseDir: "/data/bronze", PartitionKey: "anomesdia", Now: fixedClock}
	assert.Equal(t, "20251020", w.PartitionValue())
	assert.Equal(t,
		filepath.FromSlash("/data/bronze/users/anomesdia=20251020/users.txt"),
		w.Path("users", "users.txt"))
}

func TestWriterCreatesDirsAndWrites(t *testing.T) {
	base := t.TempDir()
	w := &Writer{BaseDir: base, PartitionKey: "anomesdia", Now: fixedClock}

	path, err := w.Write(sampleFrame(t), "users", "users.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "users", "anomesdia=20251020", "users.txt"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "user_id;nome\n1;Ana\n", string(b))
}

func TestWriterOverwritesSamePartition(t *testing.T) {
	base := t.TempDir()
	w := &Writer{BaseDir: base, PartitionKey: "anomesdia", Now: fixedClock}

	_, err := w.Write(sampleFrame(t), "users", "users.txt")
	require.NoError(t, err)

	f2 := ing.NewFrame(ing.Schema{Columns: []ing.ColumnSchema{{Name: "user_id", Type: ing.KindInt}}})
	path, err := w.Write(f2, "users", "users.txt")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "user_id\n", string(b), "same partition path is overwritten deterministically")
}

func TestWriterRejectsUnknownFormat(t *testing.T) {
	w := &Writer{BaseDir: t.TempDir(), PartitionKey: "anomesdia", Format: "orc", Now: fixedClock}
	_, err := w.Write(sampleFrame(t), "users", "users.txt")
	assert.Error(t, err)
}
