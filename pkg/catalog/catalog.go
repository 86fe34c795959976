/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

// Package catalog maintains the list of chart names discoverable from the
// chart repository, with an in-memory tier, a disk-persisted tier, and a
// remote-fetch tier behind a time-to-live policy.
//
// The cache never fails its caller: every failure path degrades to the best
// available data, in the order fresh > stale cache > static fallback.
package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/eea/fleetgen/pkg/runner"
)

const (
	// TTL is how long a snapshot stays fresh after capture.
	TTL = time.Hour

	// CacheFileName is the well-known disk cache file.
	CacheFileName = ".fleetgen-charts-cache.json"

	// cacheFileVersion tags the on-disk document format.
	cacheFileVersion = "1.0"

	// RepoName is the local alias under which the chart repository is
	// registered with the package manager CLI.
	RepoName = "eea"

	// RepoURL is the canonical chart repository.
	RepoURL = "https://eea.github.io/helm-charts/"

	helmTool = "helm"
)

// Snapshot is an immutable, lexicographically sorted capture of the catalog.
// Snapshots are replaced wholesale on refresh, never mutated in place.
type Snapshot struct {
	Charts    []string
	Timestamp time.Time
}

// Fresh reports whether the snapshot is within its TTL at the given instant.
func (s *Snapshot) Fresh(now time.Time) bool {
	return s != nil && now.Sub(s.Timestamp) < TTL
}

// cacheFile is the JSON document persisted to disk.
type cacheFile struct {
	Charts    []string `json:"charts"`
	Timestamp string   `json:"timestamp"`
	Version   string   `json:"version"`
}

// Cache resolves the chart catalog across its tiers.
type Cache struct {
	runner   runner.Runner
	path     string
	repoName string
	repoURL  string

	// limiter bounds remote fetch attempts so repeated cache misses cannot
	// hammer the chart repository.
	limiter *rate.Limiter

	// group collapses concurrent remote fetches into a single flight.
	group singleflight.Group

	// now is replaceable for tests.
	now func() time.Time

	// snapshot is replaced wholesale under mu; readers observe either the
	// old or the new snapshot, never a partial one.
	mu       sync.Mutex
	snapshot *Snapshot
}

// NewCache creates a catalog cache persisting to the given file path and
// fetching through the given runner.
func NewCache(r runner.Runner, path string) *Cache {
	return &Cache{
		runner:   r,
		path:     path,
		repoName: RepoName,
		repoURL:  RepoURL,
		limiter:  rate.NewLimiter(rate.Every(10*time.Second), 1),
		now:      time.Now,
	}
}

// Get resolves the catalog. forceRefresh skips the freshness check;
// allowRemoteFetch permits contacting the chart repository. Interactive
// callers pass allowRemoteFetch=false so filtering never blocks on network
// latency. Get never fails: the worst case is the static fallback list.
func (c *Cache) Get(ctx context.Context, forceRefresh, allowRemoteFetch bool) []string {
	now := c.now()

	c.mu.Lock()
	if c.snapshot == nil {
		if loaded := c.loadFromDisk(); loaded != nil {
			c.snapshot = loaded
			slog.Debug("loaded chart catalog from disk cache",
				"count", len(loaded.Charts), "captured", loaded.Timestamp)
		}
	}
	snapshot := c.snapshot
	c.mu.Unlock()

	if !forceRefresh && snapshot.Fresh(now) {
		cacheTierHits.WithLabelValues(tierMemory).Inc()
		return snapshot.Charts
	}

	if !allowRemoteFetch {
		if snapshot != nil {
			cacheTierHits.WithLabelValues(tierStale).Inc()
			return snapshot.Charts
		}
		cacheTierHits.WithLabelValues(tierFallback).Inc()
		return FallbackCharts()
	}

	fresh := c.fetch(ctx)
	if fresh != nil {
		cacheTierHits.WithLabelValues(tierRemote).Inc()
		return fresh.Charts
	}

	// Fetch failed: stale-but-available beats the static list.
	c.mu.Lock()
	snapshot = c.snapshot
	c.mu.Unlock()
	if snapshot != nil {
		cacheTierHits.WithLabelValues(tierStale).Inc()
		return snapshot.Charts
	}
	cacheTierHits.WithLabelValues(tierFallback).Inc()
	return FallbackCharts()
}

// fetch retrieves a fresh snapshot from the chart repository, installs it as
// the current snapshot, and persists it. Returns nil on any failure.
// Concurrent callers share a single flight.
func (c *Cache) fetch(ctx context.Context) *Snapshot {
	v, _, _ := c.group.Do("fetch", func() (any, error) {
		if !c.limiter.Allow() {
			slog.Debug("catalog fetch suppressed by rate limit")
			return (*Snapshot)(nil), nil
		}

		charts, ok := c.fetchFromRepo(ctx)
		if !ok {
			remoteFetchTotal.WithLabelValues("error").Inc()
			return (*Snapshot)(nil), nil
		}
		remoteFetchTotal.WithLabelValues("success").Inc()

		snapshot := &Snapshot{Charts: charts, Timestamp: c.now()}

		c.mu.Lock()
		c.snapshot = snapshot
		c.mu.Unlock()

		c.saveToDisk(snapshot)
		slog.Debug("refreshed chart catalog", "count", len(charts))
		return snapshot, nil
	})
	snapshot, _ := v.(*Snapshot)
	return snapshot
}

// fetchFromRepo runs the three remote operations: register the repository,
// refresh its index, and search it. Any failure aborts the whole fetch.
func (c *Cache) fetchFromRepo(ctx context.Context) ([]string, bool) {
	ok, out := c.runner.Run(ctx, helmTool,
		[]string{"repo", "add", c.repoName, c.repoURL, "--force-update"}, nil)
	if !ok {
		slog.Debug("failed to register chart repository", "output", out)
		return nil, false
	}

	ok, out = c.runner.Run(ctx, helmTool, []string{"repo", "update"}, nil)
	if !ok {
		slog.Debug("failed to refresh repository index", "output", out)
		return nil, false
	}

	ok, out = c.runner.Run(ctx, helmTool,
		[]string{"search", "repo", c.repoName + "/", "--output", "json"}, nil)
	if !ok || strings.TrimSpace(out) == "" {
		slog.Debug("failed to search repository index", "output", out)
		return nil, false
	}

	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		slog.Debug("failed to parse repository search output", "error", err)
		return nil, false
	}

	prefix := c.repoName + "/"
	charts := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, found := strings.CutPrefix(e.Name, prefix); found {
			charts = append(charts, name)
		}
	}
	sort.Strings(charts)
	return charts, true
}

// loadFromDisk reads the persisted snapshot. Missing or corrupt files yield
// nil silently; disk problems never surface to the caller.
func (c *Cache) loadFromDisk() *Snapshot {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}

	var doc cacheFile
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Debug("ignoring corrupt catalog cache file", "path", c.path, "error", err)
		return nil
	}
	if len(doc.Charts) == 0 {
		return nil
	}

	ts, err := time.Parse(time.RFC3339, doc.Timestamp)
	if err != nil {
		// Charts without a usable timestamp are treated as already stale.
		ts = time.Time{}
	}

	charts := append([]string(nil), doc.Charts...)
	sort.Strings(charts)
	return &Snapshot{Charts: charts, Timestamp: ts}
}

// saveToDisk persists the snapshot. Failure is logged and otherwise ignored.
func (c *Cache) saveToDisk(snapshot *Snapshot) {
	doc := cacheFile{
		Charts:    snapshot.Charts,
		Timestamp: snapshot.Timestamp.Format(time.RFC3339),
		Version:   cacheFileVersion,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		slog.Debug("failed to encode catalog cache", "error", err)
		return
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		slog.Debug("failed to persist catalog cache", "path", c.path, "error", err)
	}
}
