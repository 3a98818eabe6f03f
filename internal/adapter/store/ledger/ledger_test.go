package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/bulletin-maps/internal/adapter/store"
	"go.ngs.io/bulletin-maps/internal/domain"
)

func writeFrame(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDir_List(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"mfs_sst_2024-01-01_01.png",
		"mfs_sst_2024-01-01_00.png",
		"mfs_sst_2024-01-02_00.png",
		"mfs_cur_2024-01-01_00.png",
		"other_2024-01-01_00.png",
		"notes.txt",
	} {
		writeFrame(t, dir, name)
	}
	l := NewDir(dir, domain.Products())
	ctx := context.Background()

	all, err := l.List(ctx, store.FrameQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	sst, err := l.List(ctx, store.FrameQuery{Product: "sst", Date: "2024-01-01"})
	require.NoError(t, err)
	require.Len(t, sst, 2)
	assert.Equal(t, "mfs_sst_2024-01-01_00.png", sst[0].Name)
	assert.Equal(t, "mfs_sst_2024-01-01_01.png", sst[1].Name)
	assert.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), sst[1].ValidTime)
	assert.Equal(t, filepath.Join(dir, sst[0].Name), sst[0].Path)

	limited, err := l.List(ctx, store.FrameQuery{Product: "sst", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	since, err := l.List(ctx, store.FrameQuery{Since: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, "mfs_sst_2024-01-02_00.png", since[0].Name)
}

func TestDir_MissingFolderIsEmpty(t *testing.T) {
	l := NewDir(filepath.Join(t.TempDir(), "absent"), domain.Products())
	recs, err := l.List(context.Background(), store.FrameQuery{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDir_Record(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "mfs_cur_2024-01-01_00.png")
	l := NewDir(dir, domain.Products())

	assert.NoError(t, l.Record(context.Background(), domain.FrameRecord{Name: "mfs_cur_2024-01-01_00.png"}))
	assert.Error(t, l.Record(context.Background(), domain.FrameRecord{Name: "mfs_cur_2024-01-01_01.png"}))
}

func TestListQuery(t *testing.T) {
	q, args := listQuery(store.FrameQuery{Product: "cur", Date: "2024-01-01", Limit: 10})
	assert.Contains(t, q, "product = $1")
	assert.Contains(t, q, "= $2")
	assert.Contains(t, q, "LIMIT $3")
	assert.Equal(t, []any{"cur", "2024-01-01", 10}, args)

	q, args = listQuery(store.FrameQuery{})
	assert.NotContains(t, q, "$1")
	assert.Empty(t, args)
}

// TestPostgres_RoundTrip runs against the database named by TEST_DATABASE_URL.
func TestPostgres_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	l, err := NewPostgres(ctx, url)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	name := "mfs_test_2000-01-01_00.png"
	rec := domain.FrameRecord{
		RunID:        "run-1",
		Product:      "test",
		BulletinDate: "20000101",
		ValidTime:    time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Name:         name,
		Path:         "/tmp/" + name,
		Input:        "input.nc",
	}
	require.NoError(t, l.Record(ctx, rec))
	rec.RunID = "run-2"
	require.NoError(t, l.Record(ctx, rec))

	got, err := l.List(ctx, store.FrameQuery{Product: "test", Date: "2000-01-01"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "run-2", got[0].RunID)
	assert.Equal(t, rec.ValidTime, got[0].ValidTime)
}
