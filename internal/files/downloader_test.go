package files

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDownloader(t *testing.T) *Downloader {
	t.Helper()
	logger := zerolog.Nop()
	d, err := NewDownloader(&logger)
	require.NoError(t, err)
	d.dir = t.TempDir()
	return d
}

func TestDownloadTorrent(t *testing.T) {
	payload := []byte("d8:announce40:udp://tracker.example.org:1337/announcee")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movies/inception.torrent", r.URL.Path)
		w.Header().Set("Content-Type", "application/x-bittorrent")
		w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	d := newTestDownloader(t)
	path, err := d.Download(context.Background(), srv.URL+"/movies/inception.torrent")
	require.NoError(t, err)
	t.Cleanup(func() { d.Cleanup(path) })

	assert.Equal(t, d.dir, filepath.Dir(path))
	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "movie_"))
	assert.True(t, strings.HasSuffix(base, ".torrent"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDownloadNamesNonTorrentFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("anything"))
	}))
	t.Cleanup(srv.Close)

	d := newTestDownloader(t)
	path, err := d.Download(context.Background(), srv.URL+"/torrent/download/CAFEBABE")
	require.NoError(t, err)
	t.Cleanup(func() { d.Cleanup(path) })

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "file_"))
	assert.False(t, strings.HasSuffix(base, ".torrent"))
}

func TestDownloadRejectsEmptyURL(t *testing.T) {
	d := newTestDownloader(t)
	_, err := d.Download(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestDownloadRejectsAnnouncedOversize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write(make([]byte, 1000))
	}))
	t.Cleanup(srv.Close)

	d := newTestDownloader(t)
	d.maxSize = 100

	_, err := d.Download(context.Background(), srv.URL+"/big.torrent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestDownloadRejectsStreamedOversize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < 10; i++ {
			w.Write(make([]byte, 50))
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)

	d := newTestDownloader(t)
	d.maxSize = 100

	_, err := d.Download(context.Background(), srv.URL+"/big.torrent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")

	entries, err := os.ReadDir(d.dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial download should be removed")
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	d := newTestDownloader(t)
	_, err := d.Download(context.Background(), srv.URL+"/missing.torrent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestCleanupTolerates(t *testing.T) {
	d := newTestDownloader(t)

	path := filepath.Join(d.dir, "movie_x.torrent")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	d.Cleanup(path)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	d.Cleanup(path)
	d.Cleanup("")
}

func TestCleanupAll(t *testing.T) {
	d := newTestDownloader(t)
	for _, name := range []string{"movie_a.torrent", "file_b"} {
		require.NoError(t, os.WriteFile(filepath.Join(d.dir, name), []byte("x"), 0o644))
	}

	require.NoError(t, d.CleanupAll())

	entries, err := os.ReadDir(d.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
