/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner responds to helm invocations keyed by the leading args.
type scriptedRunner struct {
	responses map[string]struct {
		ok  bool
		out string
	}
	calls []string
}

func newScriptedRunner() *scriptedRunner {
	return &scriptedRunner{responses: map[string]struct {
		ok  bool
		out string
	}{}}
}

func (s *scriptedRunner) respond(cmd string, ok bool, out string) {
	s.responses[cmd] = struct {
		ok  bool
		out string
	}{ok, out}
}

func (s *scriptedRunner) Run(_ context.Context, tool string, args []string, _ map[string]string) (bool, string) {
	key := tool + " " + strings.Join(args, " ")
	s.calls = append(s.calls, key)
	resp, ok := s.responses[key]
	if !ok {
		return false, "unexpected command: " + key
	}
	return resp.ok, resp.out
}

func (s *scriptedRunner) calledRemote() bool {
	for _, c := range s.calls {
		if strings.HasPrefix(c, "helm repo add") {
			return true
		}
	}
	return false
}

func (s *scriptedRunner) respondSearchSuccess(names ...string) {
	s.respond("helm repo add eea "+RepoURL+" --force-update", true, "")
	s.respond("helm repo update", true, "")

	entries := make([]map[string]string, 0, len(names))
	for _, n := range names {
		entries = append(entries, map[string]string{"name": "eea/" + n})
	}
	data, _ := json.Marshal(entries)
	s.respond("helm search repo eea/ --output json", true, string(data))
}

func writeCacheFile(t *testing.T, path string, charts []string, ts time.Time) {
	t.Helper()
	doc := cacheFile{
		Charts:    charts,
		Timestamp: ts.Format(time.RFC3339),
		Version:   cacheFileVersion,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func TestFreshDiskCacheShortCircuitsRemote(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, CacheFileName)
	writeCacheFile(t, path, []string{"postgres", "redis"}, time.Now().Add(-10*time.Minute))

	r := newScriptedRunner()
	cache := NewCache(r, path)

	charts := cache.Get(context.Background(), false, true)

	assert.Equal(t, []string{"postgres", "redis"}, charts)
	assert.False(t, r.calledRemote(), "a fresh disk cache must not trigger a remote fetch")
}

func TestNoCacheAndFailedFetchReturnsFallback(t *testing.T) {
	r := newScriptedRunner()
	r.respond("helm repo add eea "+RepoURL+" --force-update", false, "network unreachable")

	cache := NewCache(r, filepath.Join(t.TempDir(), CacheFileName))
	charts := cache.Get(context.Background(), false, true)

	assert.NotEmpty(t, charts)
	assert.True(t, sort.StringsAreSorted(charts), "fallback list must be sorted")
	assert.Equal(t, FallbackCharts(), charts)
}

func TestSuccessfulFetchPersistsAndSorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFileName)
	r := newScriptedRunner()
	r.respondSearchSuccess("redis", "postgres", "volto")

	cache := NewCache(r, path)
	charts := cache.Get(context.Background(), true, true)

	assert.Equal(t, []string{"postgres", "redis", "volto"}, charts)

	// The snapshot must have been persisted for the next process.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc cacheFile
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []string{"postgres", "redis", "volto"}, doc.Charts)
	assert.Equal(t, cacheFileVersion, doc.Version)
	_, err = time.Parse(time.RFC3339, doc.Timestamp)
	assert.NoError(t, err)
}

func TestRemoteFetchDisallowedUsesBestAvailable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, CacheFileName)

	// Stale disk cache, two hours old.
	writeCacheFile(t, path, []string{"gitea"}, time.Now().Add(-2*time.Hour))

	r := newScriptedRunner()
	cache := NewCache(r, path)

	charts := cache.Get(context.Background(), false, false)
	assert.Equal(t, []string{"gitea"}, charts, "stale snapshot preferred over fallback when remote is off")
	assert.False(t, r.calledRemote())

	// With no snapshot at all the static fallback is returned.
	empty := NewCache(r, filepath.Join(dir, "missing.json"))
	assert.Equal(t, FallbackCharts(), empty.Get(context.Background(), false, false))
	assert.False(t, r.calledRemote())
}

func TestFailedFetchFallsBackToStaleSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFileName)
	writeCacheFile(t, path, []string{"haproxy"}, time.Now().Add(-3*time.Hour))

	r := newScriptedRunner()
	r.respond("helm repo add eea "+RepoURL+" --force-update", true, "")
	r.respond("helm repo update", false, "timeout")

	cache := NewCache(r, path)
	charts := cache.Get(context.Background(), false, true)

	assert.Equal(t, []string{"haproxy"}, charts)
}

func TestCorruptDiskCacheIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFileName)
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0600))

	r := newScriptedRunner()
	r.respondSearchSuccess("postgres")

	cache := NewCache(r, path)
	charts := cache.Get(context.Background(), false, true)

	assert.Equal(t, []string{"postgres"}, charts)
}

func TestMalformedSearchOutputAborts(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFileName)
	r := newScriptedRunner()
	r.respond("helm repo add eea "+RepoURL+" --force-update", true, "")
	r.respond("helm repo update", true, "")
	r.respond("helm search repo eea/ --output json", true, "WARNING: not json")

	cache := NewCache(r, path)
	charts := cache.Get(context.Background(), false, true)

	assert.Equal(t, FallbackCharts(), charts)
	assert.NoFileExists(t, path, "a failed fetch must not persist a snapshot")
}

func TestSnapshotFreshness(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		snapshot *Snapshot
		want     bool
	}{
		{"nil snapshot", nil, false},
		{"just captured", &Snapshot{Timestamp: now}, true},
		{"within ttl", &Snapshot{Timestamp: now.Add(-59 * time.Minute)}, true},
		{"expired", &Snapshot{Timestamp: now.Add(-61 * time.Minute)}, false},
		{"zero timestamp", &Snapshot{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snapshot.Fresh(now))
		})
	}
}
