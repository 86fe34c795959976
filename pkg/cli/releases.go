/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/eea/fleetgen/pkg/release"
)

func releasesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "releases",
		EnableShellCompletion: true,
		Usage:                 "List releases deployed in the current cluster",
		Description: `List Helm releases deployed in the cluster selected by the current
Rancher context. A temporary kubeconfig is generated from the Rancher
session so no local kubeconfig setup is needed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "namespace",
				Aliases: []string{"n"},
				Usage:   "Namespace to list releases in (default: all namespaces)",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tools, err := newToolset()
			if err != nil {
				return err
			}

			path, cleanup := kubeconfigPath(ctx, tools)
			defer cleanup()

			releases, err := release.NewClient(tools.runner, path).List(ctx, cmd.String("namespace"))
			if err != nil {
				return err
			}

			return writeOutput(cmd, releases)
		},
	}
}

// kubeconfigPath generates a kubeconfig from the active Rancher
// session. Returns an empty path when generation fails; the package
// manager then uses its ambient configuration. The cleanup func
// removes the temporary file and is always safe to call.
func kubeconfigPath(ctx context.Context, tools *toolset) (string, func()) {
	kubeconfig, err := tools.cluster.GenerateKubeconfig(ctx)
	if err != nil {
		slog.Debug("kubeconfig generation failed, using ambient configuration", "error", err)
		return "", func() {}
	}
	return kubeconfig.Path, kubeconfig.Close
}
