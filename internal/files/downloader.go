package files

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxSize caps downloads at 50 MB, the Telegram document limit.
	DefaultMaxSize = 50 * 1024 * 1024

	downloadSubdir = "telegram_downloads"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Downloader fetches files into a scratch directory under the system temp
// dir. Downloads are uniquely named so concurrent chats never collide.
type Downloader struct {
	dir     string
	maxSize int64
	client  *http.Client
	logger  *zerolog.Logger
}

func NewDownloader(logger *zerolog.Logger) (*Downloader, error) {
	dir := filepath.Join(os.TempDir(), downloadSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating download directory")
	}
	return &Downloader{
		dir:     dir,
		maxSize: DefaultMaxSize,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}, nil
}

// Download fetches rawURL and returns the absolute path of the stored file.
// Torrent URLs are stored as movie_<uuid>.torrent, anything else as
// file_<uuid>. Bodies over the size cap are refused, whether announced via
// Content-Length or discovered mid-stream. The caller owns the returned file
// and passes it to Cleanup when done.
func (d *Downloader) Download(ctx context.Context, rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("download url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "building download request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Error().Err(err).Str("url", rawURL).Msg("error downloading file")
		return "", errors.Wrap(err, "downloading file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Error().Int("status_code", resp.StatusCode).Str("url", rawURL).Msg("download failed")
		return "", errors.Errorf("download failed with status %d", resp.StatusCode)
	}
	if resp.ContentLength > d.maxSize {
		return "", errors.Errorf("file too large: %d bytes", resp.ContentLength)
	}

	path := filepath.Join(d.dir, fileName(rawURL))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}

	written, err := io.Copy(f, io.LimitReader(resp.Body, d.maxSize+1))
	closeErr := f.Close()
	if err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "writing file")
	}
	if closeErr != nil {
		os.Remove(path)
		return "", errors.Wrap(closeErr, "closing file")
	}
	if written > d.maxSize {
		os.Remove(path)
		return "", errors.Errorf("file exceeds the %d byte limit", d.maxSize)
	}

	d.logger.Info().Str("path", path).Int64("bytes", written).Msg("file downloaded")
	return path, nil
}

// Cleanup removes a downloaded file. Best effort, never fails the caller.
func (d *Downloader) Cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		d.logger.Warn().Err(err).Str("path", path).Msg("could not remove downloaded file")
	}
}

// CleanupAll removes everything left in the download directory, typically
// leftovers from a previous run that died mid-send.
func (d *Downloader) CleanupAll() error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return errors.Wrap(err, "reading download directory")
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(d.dir, entry.Name())); err != nil {
			d.logger.Warn().Err(err).Str("file", entry.Name()).Msg("could not remove stale download")
			continue
		}
		removed++
	}
	if removed > 0 {
		d.logger.Info().Int("count", removed).Msg("cleaned up stale downloads")
	}
	return nil
}

// fileName derives a collision-free local name, keeping the .torrent
// extension visible for Telegram clients.
func fileName(rawURL string) string {
	id := uuid.NewString()
	u, err := url.Parse(rawURL)
	if err == nil && strings.HasSuffix(strings.ToLower(u.Path), ".torrent") {
		return fmt.Sprintf("movie_%s.torrent", id)
	}
	if strings.HasSuffix(strings.ToLower(rawURL), ".torrent") {
		return fmt.Sprintf("movie_%s.torrent", id)
	}
	return fmt.Sprintf("file_%s", id)
}
