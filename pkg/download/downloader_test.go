package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArxivBrowser/internal/models"
)

func TestDownloadAndCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/pdf/2503.01234v1", r.URL.Path)
		w.Write([]byte("%PDF-1.5 fake"))
	}))
	defer srv.Close()

	d := New(srv.Client(), t.TempDir(), nil)
	p := &models.Paper{ID: "2503.01234", PDFURL: srv.URL + "/pdf/2503.01234v1"}

	path, err := d.Download(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, d.Path("2503.01234"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.5 fake", string(data))

	_, err = d.Download(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "已下载的文件直接复用")
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := New(srv.Client(), dir, nil)
	_, err := d.Download(context.Background(), &models.Paper{ID: "x", PDFURL: srv.URL + "/pdf/x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "失败时不留下文件")
}

func TestPathForOldStyleID(t *testing.T) {
	d := New(http.DefaultClient, "/tmp/pdfs", nil)
	assert.Equal(t, filepath.Join("/tmp/pdfs", "math_0601001.pdf"), d.Path("math/0601001"))
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("c"), 0644))

	n, err := New(http.DefaultClient, dir, nil).Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1)
}
