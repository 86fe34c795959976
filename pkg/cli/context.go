/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// contextInfo is the context command's output row.
type contextInfo struct {
	Context   string `json:"context" yaml:"context"`
	ClusterID string `json:"cluster_id" yaml:"cluster_id"`
	Cluster   string `json:"cluster" yaml:"cluster"`
}

func contextCmd() *cli.Command {
	return &cli.Command{
		Name:                  "context",
		EnableShellCompletion: true,
		Usage:                 "Inspect the active Rancher context",
		Commands: []*cli.Command{
			contextShowCmd(),
			contextDetectCmd(),
			contextNamespacesCmd(),
		},
	}
}

func contextShowCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the saved cluster context",
		Flags: []cli.Flag{outputFlag, formatFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tools, err := newToolset()
			if err != nil {
				return err
			}

			info := tools.cluster.Current()
			if info == nil {
				return fmt.Errorf("no cluster context saved, run %q first", name+" context detect")
			}

			return writeOutput(cmd, contextInfo{
				Context:   info.Context,
				ClusterID: info.ID,
				Cluster:   info.Name,
			})
		},
	}
}

func contextDetectCmd() *cli.Command {
	return &cli.Command{
		Name:  "detect",
		Usage: "Detect and save the current Rancher context",
		Description: `Query the Rancher CLI for the currently selected context and persist
it to the settings file. The detected cluster decides which folder
generated artifacts land in.`,
		Flags: []cli.Flag{outputFlag, formatFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tools, err := newToolset()
			if err != nil {
				return err
			}

			info := tools.cluster.Detect(ctx)
			if info == nil {
				return fmt.Errorf("failed to detect Rancher context, is the Rancher CLI logged in?")
			}

			return writeOutput(cmd, contextInfo{
				Context:   info.Context,
				ClusterID: info.ID,
				Cluster:   info.Name,
			})
		},
	}
}

func contextNamespacesCmd() *cli.Command {
	return &cli.Command{
		Name:  "namespaces",
		Usage: "List namespaces in the current cluster",
		Flags: []cli.Flag{outputFlag, formatFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tools, err := newToolset()
			if err != nil {
				return err
			}

			namespaces := tools.cluster.ListNamespaces(ctx)
			if len(namespaces) == 0 {
				return fmt.Errorf("no namespaces found, is the Rancher CLI logged in?")
			}

			return writeOutput(cmd, namespaces)
		},
	}
}
