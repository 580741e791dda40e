package ingest

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pierrec/lz4"
	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func assertKind(t *testing.T, err error, kind models.IngestionErrorKind) {
	t.Helper()
	got, ok := models.IngestionKind(err)
	require.True(t, ok, "expected ingestion error, got %v", err)
	assert.Equal(t, kind, got)
}

type stubResolver struct {
	dir string
	err error
}

func (s stubResolver) Resolve(ctx context.Context, id string) (string, error) {
	return s.dir, s.err
}

func TestSelectCSV(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		expect string
		kind   models.IngestionErrorKind
	}{
		{
			name:  "no csv",
			files: map[string]string{"readme.txt": "hello"},
			kind:  models.NoTabularFileFound,
		},
		{
			name:   "single",
			files:  map[string]string{"orders.csv": "a,b\n1,2\n", "readme.md": strings.Repeat("x", 1000)},
			expect: "orders.csv",
		},
		{
			name:   "largest wins",
			files:  map[string]string{"small.csv": "a\n1\n", "big.CSV": "a\n1\n2\n3\n4\n", "mid.csv": "a\n1\n2\n"},
			expect: "big.CSV",
		},
		{
			name:   "ties resolve by name",
			files:  map[string]string{"b.csv": "a\n1\n", "a.csv": "a\n2\n"},
			expect: "a.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				putFile(t, filepath.Join(dir, name), []byte(content))
			}
			require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

			path, err := SelectCSV(dir)
			if tt.kind != 0 {
				assertKind(t, err, tt.kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.expect), path)
		})
	}

	_, err := SelectCSV(filepath.Join(t.TempDir(), "missing"))
	assertKind(t, err, models.SourceUnavailable)
}

func TestUploadSource(t *testing.T) {
	ctx := context.Background()

	p, err := UploadSource{FileName: "orders.csv", Reader: strings.NewReader("a,b\n1,2\n")}.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "orders.csv", p.Name)
	assert.Equal(t, "a,b\n1,2\n", string(p.Data))

	_, err = UploadSource{FileName: "orders.xlsx", Reader: strings.NewReader("x")}.Fetch(ctx)
	assertKind(t, err, models.SourceUnavailable)

	_, err = UploadSource{FileName: "orders.csv", Reader: strings.NewReader("")}.Fetch(ctx)
	assertKind(t, err, models.EmptyResult)

	_, err = UploadSource{FileName: "orders.csv"}.Fetch(ctx)
	assertKind(t, err, models.SourceUnavailable)
}

func TestRemoteSource(t *testing.T) {
	ctx := context.Background()

	t.Run("resolver failure", func(t *testing.T) {
		_, err := RemoteSource{Resolver: stubResolver{err: errors.New("offline")}, DatasetID: "x/y"}.Fetch(ctx)
		assertKind(t, err, models.SourceUnavailable)
		assert.Contains(t, err.Error(), "offline")
	})

	t.Run("no csv", func(t *testing.T) {
		_, err := RemoteSource{Resolver: stubResolver{dir: t.TempDir()}, DatasetID: "x/y"}.Fetch(ctx)
		assertKind(t, err, models.NoTabularFileFound)
	})

	t.Run("empty csv", func(t *testing.T) {
		dir := t.TempDir()
		putFile(t, filepath.Join(dir, "orders.csv"), nil)
		_, err := RemoteSource{Resolver: stubResolver{dir: dir}, DatasetID: "x/y"}.Fetch(ctx)
		assertKind(t, err, models.EmptyResult)
	})

	t.Run("no resolver", func(t *testing.T) {
		_, err := RemoteSource{DatasetID: "x/y"}.Fetch(ctx)
		assertKind(t, err, models.SourceUnavailable)
	})
}

func TestCacheResolver(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	const id = "owner/sales"

	putFile(t, filepath.Join(root, "owner", "sales", "versions", "1", "old.csv"), []byte("a\n1\n"))
	v2 := filepath.Join(root, "owner", "sales", "versions", "2")

	var zipped bytes.Buffer
	zw := zip.NewWriter(&zipped)
	for name, content := range map[string]string{"data/orders.csv": "a,b\n1,2\n3,4\n5,6\n", "notes.txt": strings.Repeat("n", 500)} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	putFile(t, filepath.Join(v2, "bundle.zip"), zipped.Bytes())

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write([]byte("a\n1\n"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	putFile(t, filepath.Join(v2, "small.csv.gz"), gz.Bytes())

	var lz bytes.Buffer
	lw := lz4.NewWriter(&lz)
	_, err = lw.Write([]byte("a\n"))
	require.NoError(t, err)
	require.NoError(t, lw.Close())
	putFile(t, filepath.Join(v2, "tiny.csv.lz4"), lz.Bytes())

	resolver := CacheResolver{Root: root}
	dir, err := resolver.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, v2, dir)
	assert.FileExists(t, filepath.Join(v2, "orders.csv"))
	assert.FileExists(t, filepath.Join(v2, "small.csv"))
	assert.FileExists(t, filepath.Join(v2, "tiny.csv"))
	assert.NoFileExists(t, filepath.Join(v2, "notes.txt"))

	// second resolve reuses extracted files
	_, err = resolver.Resolve(ctx, id)
	require.NoError(t, err)

	p, err := RemoteSource{Resolver: resolver, DatasetID: id}.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "orders.csv", p.Name)
	assert.Equal(t, "a,b\n1,2\n3,4\n5,6\n", string(p.Data))

	_, err = resolver.Resolve(ctx, "owner/missing")
	assert.Error(t, err)
	_, err = resolver.Resolve(ctx, "../etc")
	assert.Error(t, err)
	_, err = CacheResolver{}.Resolve(ctx, id)
	assert.Error(t, err)
}
