// Package cache keeps local copies of downloaded profile files. Entries
// are write-once and keyed by the file's base name; nothing is evicted for
// the lifetime of the process.
package cache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/oceandata/argo-explorer/internal/fetch"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
)

// Cache downloads archive files on first access and serves the local path
// on every later access. Concurrent requests for the same file share one
// download; files land at their final path only after a complete write, so
// a failed transfer never leaves a truncated entry behind.
type Cache struct {
	dir     string
	baseURL string
	httpCfg fetch.ClientConfig
	circuit *gobreaker.CircuitBreaker

	inflight singleflight.Group
}

// New creates a Cache storing files under dir and fetching misses from
// baseURL + fileID. The directory is created if missing.
func New(client *http.Client, dir, baseURL string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{
		dir:     dir,
		baseURL: baseURL,
		httpCfg: fetch.ClientConfig{
			Client:  client,
			Backoff: fetch.DefaultBackoff(),
		},
		circuit: fetch.NewBreaker("argo-downloads"),
	}, nil
}

// Fetch returns the local path for the archive-relative file identifier,
// downloading it on first access.
func (c *Cache) Fetch(ctx context.Context, fileID string) (string, error) {
	key := path.Base(fileID)
	local := filepath.Join(c.dir, key)

	// Cache hit: the file's presence is the whole check.
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	_, err, _ := c.inflight.Do(key, func() (interface{}, error) {
		// Another flight may have completed while we queued.
		if _, err := os.Stat(local); err == nil {
			return nil, nil
		}
		return nil, c.download(ctx, fileID, local)
	})
	if err != nil {
		return "", err
	}
	return local, nil
}

// Stats reports the number of cached files and their total size in bytes.
func (c *Cache) Stats() (files int, bytes int64) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files++
		bytes += info.Size()
	}
	return files, bytes
}

// download writes the remote file to a temp file in the cache directory and
// renames it into place, so the final path is always all-or-nothing.
func (c *Cache) download(ctx context.Context, fileID, local string) error {
	resp, err := fetch.Do(ctx, c.httpCfg, c.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, c.baseURL+fileID, nil)
	})
	if err != nil {
		return fmt.Errorf("download %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(c.dir, path.Base(fileID)+".part-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", fileID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), local); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit %s: %w", fileID, err)
	}
	return nil
}
