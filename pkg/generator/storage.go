/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/eea/fleetgen/pkg/config"
	"github.com/eea/fleetgen/pkg/errors"
	"github.com/eea/fleetgen/pkg/resolver"
)

// StorageAddress locates an application's artifacts inside each
// storage tree. The same (cluster folder, app dir) pair addresses both
// trees; it is derived on demand and never persisted.
type StorageAddress struct {
	ClusterFolder string
	AppDirName    string
}

// NewStorageAddress derives the address from the active cluster
// identity and the finalized app name. The cluster name is preferred,
// then the cluster id, then a literal "default" folder.
func NewStorageAddress(clusterName, clusterID, appName string) StorageAddress {
	folder := clusterName
	if folder == "" {
		folder = clusterID
	}
	if folder == "" {
		folder = "default"
	}
	return StorageAddress{
		ClusterFolder: resolver.Sanitize(folder),
		AppDirName:    resolver.Sanitize(appName),
	}
}

func (a StorageAddress) dir(root string) string {
	return filepath.Join(root, a.ClusterFolder, a.AppDirName)
}

// Writer persists rendered artifacts into the two parallel storage
// trees: the bundle manifest under the bundle root, the config object
// under the config root.
type Writer struct {
	roots config.StorageRoots
}

// NewWriter creates a writer over the given storage roots.
func NewWriter(roots config.StorageRoots) *Writer {
	return &Writer{roots: roots}
}

// Write renders the configuration and writes its artifacts at the
// given address. Existing artifacts at the same address are replaced
// wholesale; re-running with the same inputs reproduces the same
// bytes.
func (w *Writer) Write(cfg *resolver.FleetConfig, address StorageAddress) (err error) {
	runID := uuid.NewString()
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		generateTotal.WithLabelValues(outcome).Inc()
		generateDuration.Observe(time.Since(start).Seconds())
	}()

	artifacts, err := Render(cfg)
	if err != nil {
		return err
	}

	bundleDir := address.dir(w.roots.BundleRoot)
	configDir := address.dir(w.roots.ConfigRoot)

	for _, dir := range []string{bundleDir, configDir} {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal,
				fmt.Sprintf("failed to create artifact dir %q", dir), err)
		}
	}

	bundlePath := filepath.Join(bundleDir, "fleet.yaml")
	if err = os.WriteFile(bundlePath, []byte(artifacts.FleetYAML), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to write bundle manifest %q", bundlePath), err)
	}

	configPath := filepath.Join(configDir, address.AppDirName+"-configmap.yaml")
	if err = os.WriteFile(configPath, []byte(artifacts.ConfigMapYAML), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to write config object %q", configPath), err)
	}

	slog.Info("wrote deployment artifacts",
		"run", runID,
		"app", cfg.AppName,
		"cluster", address.ClusterFolder,
		"bundle", bundlePath,
		"config", configPath)

	return nil
}
