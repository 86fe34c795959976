/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package cluster

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/eea/fleetgen/pkg/errors"
)

// Kubeconfig materializes the current context's kubeconfig into a temporary
// file so the package manager CLI can be pointed at the same cluster the
// management CLI is logged into.
type Kubeconfig struct {
	// Path of the temporary kubeconfig file.
	Path string
}

// GenerateKubeconfig exports the active context's kubeconfig to a temporary
// file. The caller owns the file and should Close it when done.
func (m *Manager) GenerateKubeconfig(ctx context.Context) (*Kubeconfig, error) {
	ok, out := m.runner.Run(ctx, rancherTool, []string{"kubectl", "config", "view", "--raw"}, nil)
	if !ok || strings.TrimSpace(out) == "" {
		return nil, errors.New(errors.ErrCodeUnavailable, "failed to export kubeconfig from management CLI")
	}

	f, err := os.CreateTemp("", "fleetgen-kubeconfig-*.yaml")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create kubeconfig file", err)
	}
	if _, err := f.WriteString(out); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to write kubeconfig file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to close kubeconfig file", err)
	}

	slog.Debug("generated temporary kubeconfig", "path", f.Name())
	return &Kubeconfig{Path: f.Name()}, nil
}

// Close removes the temporary kubeconfig file. Safe to call on nil.
func (k *Kubeconfig) Close() {
	if k == nil || k.Path == "" {
		return
	}
	if err := os.Remove(k.Path); err != nil && !os.IsNotExist(err) {
		slog.Debug("failed to remove temporary kubeconfig", "path", k.Path, "error", err)
	}
}
