/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

// Package config persists tool settings and resolves the two artifact storage
// roots: one tree for bundle manifests and a parallel tree for config objects.
package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eea/fleetgen/pkg/errors"
)

const (
	// SettingsFileName is the well-known settings file, resolved against BaseDir.
	SettingsFileName = ".fleetgen.json"

	defaultBundleDir = "apps"
	defaultConfigDir = "int"
)

// Settings holds persisted tool configuration. Zero values fall back to
// defaults at resolution time; unknown historical keys are dropped on save.
type Settings struct {
	// BundleDir is the root of the bundle manifest tree.
	BundleDir string `json:"bundle_dir,omitempty"`
	// ConfigDir is the root of the config object tree.
	ConfigDir string `json:"config_dir,omitempty"`
	// ClusterContext is the last detected cluster context string.
	ClusterContext string `json:"current_cluster_context,omitempty"`
	// ClusterID is the last detected cluster identifier.
	ClusterID string `json:"current_cluster_id,omitempty"`
	// ClusterName is the last detected cluster display name.
	ClusterName string `json:"current_cluster_name,omitempty"`
	// ShowAdvanced toggles advanced output in commands.
	ShowAdvanced bool `json:"show_advanced,omitempty"`
}

// Store loads and saves Settings from a base directory.
type Store struct {
	// BaseDir is where the settings file and relative storage roots live.
	BaseDir string
}

// NewStore creates a settings store rooted at baseDir. An empty baseDir means
// the current working directory.
func NewStore(baseDir string) *Store {
	if baseDir == "" {
		baseDir = "."
	}
	return &Store{BaseDir: baseDir}
}

func (s *Store) settingsPath() string {
	return filepath.Join(s.BaseDir, SettingsFileName)
}

// Load reads settings from disk. A missing or corrupt file is not an error;
// it yields zero settings so the tool can run with defaults.
func (s *Store) Load() Settings {
	var settings Settings
	data, err := os.ReadFile(s.settingsPath())
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("failed to read settings file", "path", s.settingsPath(), "error", err)
		}
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		slog.Warn("ignoring corrupt settings file", "path", s.settingsPath(), "error", err)
		return Settings{}
	}
	return settings
}

// Save writes settings to disk, replacing the previous file.
func (s *Store) Save(settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode settings", err)
	}
	if err := os.WriteFile(s.settingsPath(), data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to write settings", err)
	}
	return nil
}

// StorageRoots are the two absolute, existing directory trees the generator
// writes into.
type StorageRoots struct {
	// BundleRoot holds bundle manifests, nested by cluster and app.
	BundleRoot string
	// ConfigRoot holds config objects, nested identically.
	ConfigRoot string
}

// ResolveStorageRoots resolves the configured (or default) storage roots to
// absolute paths and creates them if absent.
func (s *Store) ResolveStorageRoots(settings Settings) (*StorageRoots, error) {
	bundle := settings.BundleDir
	if bundle == "" {
		bundle = defaultBundleDir
	}
	cfg := settings.ConfigDir
	if cfg == "" {
		cfg = defaultConfigDir
	}

	roots := &StorageRoots{}
	var err error
	if roots.BundleRoot, err = s.resolveDir(bundle); err != nil {
		return nil, err
	}
	if roots.ConfigRoot, err = s.resolveDir(cfg); err != nil {
		return nil, err
	}
	return roots, nil
}

func (s *Store) resolveDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.BaseDir, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidRequest, "failed to resolve storage root", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeInternal, "failed to create storage root", err,
			map[string]any{"path": abs})
	}
	return abs, nil
}
