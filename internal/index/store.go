// Package index holds the in-memory snapshot of the global profile index
// and the range queries that run against it.
package index

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/oceandata/argo-explorer/internal/argo"
	"github.com/oceandata/argo-explorer/internal/fetch"
	"github.com/sony/gobreaker"
)

// minIndexFields is the minimum comma-separated field count for a data line.
const minIndexFields = 8

// Snapshot is the parsed index: every accepted record, sorted ascending by
// observation date. Immutable after Load returns it; safe for concurrent
// readers.
type Snapshot struct {
	// ByDate is sorted ascending by ProfileRecord.Date.
	ByDate []argo.ProfileRecord

	// Skipped counts index lines rejected during parsing.
	Skipped int
}

// Store loads the flat index file exactly once per process lifetime and
// hands out the immutable snapshot. A failed load leaves the store
// unloaded so a later call can retry.
type Store struct {
	localPath string
	remoteURL string
	httpCfg   fetch.ClientConfig
	circuit   *gobreaker.CircuitBreaker

	mu       sync.Mutex
	snapshot *Snapshot
}

// NewStore creates a Store reading from localPath when present, otherwise
// fetching remoteURL.
func NewStore(client *http.Client, localPath, remoteURL string) *Store {
	return &Store{
		localPath: localPath,
		remoteURL: remoteURL,
		httpCfg: fetch.ClientConfig{
			Client:  client,
			Backoff: fetch.DefaultBackoff(),
		},
		circuit: fetch.NewBreaker("argo-index"),
	}
}

// Load returns the index snapshot, parsing the source on first call.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil {
		return s.snapshot, nil
	}

	log.Println("index: loading profile index")

	src, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open index source: %w", err)
	}
	defer src.Close()

	snap, err := parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	sort.SliceStable(snap.ByDate, func(i, j int) bool {
		return snap.ByDate[i].Date < snap.ByDate[j].Date
	})

	s.snapshot = snap
	log.Printf("index: loaded %d profiles (%d lines skipped)", len(snap.ByDate), snap.Skipped)
	return snap, nil
}

// Stats reports the loaded profile count and parse-skip counter; loaded is
// false before the first successful Load.
func (s *Store) Stats() (profiles, skipped int, loaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return 0, 0, false
	}
	return len(s.snapshot.ByDate), s.snapshot.Skipped, true
}

func (s *Store) open(ctx context.Context) (io.ReadCloser, error) {
	if s.localPath != "" {
		if f, err := os.Open(s.localPath); err == nil {
			log.Printf("index: reading local copy %s", s.localPath)
			return f, nil
		}
	}

	log.Printf("index: downloading %s", s.remoteURL)
	resp, err := fetch.Do(ctx, s.httpCfg, s.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, s.remoteURL, nil)
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// parse reads the comment-prefixed CSV index. Lines with fewer than
// minIndexFields fields or unparseable lat/lon are counted and skipped; a
// record is never stored partially.
func parse(r io.Reader) (*Snapshot, error) {
	snap := &Snapshot{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.Contains(line, "file,") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < minIndexFields {
			snap.Skipped++
			continue
		}

		lat, latErr := strconv.ParseFloat(parts[2], 64)
		lon, lonErr := strconv.ParseFloat(parts[3], 64)
		if latErr != nil || lonErr != nil {
			snap.Skipped++
			continue
		}

		snap.ByDate = append(snap.ByDate, argo.ProfileRecord{
			File:         parts[0],
			Date:         parts[1],
			Lat:          lat,
			Lon:          lon,
			Ocean:        parts[4],
			ProfilerType: parts[5],
			Institution:  parts[6],
			DateUpdate:   parts[7],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}
