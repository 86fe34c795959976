/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/eea/fleetgen/pkg/catalog"
)

// chartEntry is one row of chart listing output.
type chartEntry struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
}

func toEntries(charts []string) []chartEntry {
	entries := make([]chartEntry, 0, len(charts))
	for _, chart := range charts {
		entries = append(entries, chartEntry{
			Name:     chart,
			Category: string(catalog.Categorize(chart)),
		})
	}
	return entries
}

func chartsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "charts",
		EnableShellCompletion: true,
		Usage:                 "Browse the chart catalog",
		Commands: []*cli.Command{
			chartsListCmd(),
			chartsSearchCmd(),
			chartsRefreshCmd(),
		},
	}
}

func chartsListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List available charts",
		Description: `List the charts available in the EEA chart repository.

The catalog is cached for one hour; use --refresh to force a new fetch.
When the repository is unreachable the most recent cached listing is
used, falling back to a built-in chart list.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Ignore the cached catalog and fetch a fresh one",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Only list charts in this category (Frontend, Backend, Infrastructure, Other)",
			},
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "Only list charts whose name contains this text",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tools, err := newToolset()
			if err != nil {
				return err
			}

			charts := tools.catalog.Get(ctx, cmd.Bool("refresh"), true)

			if term := cmd.String("filter"); term != "" {
				charts = catalog.Filter(charts, term)
			}

			entries := toEntries(charts)
			if category := cmd.String("category"); category != "" {
				filtered := entries[:0]
				for _, e := range entries {
					if strings.EqualFold(e.Category, category) {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}

			return writeOutput(cmd, entries)
		},
	}
}

func chartsSearchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search charts by name",
		ArgsUsage: "TERM",
		Description: `Search the cached catalog for charts matching TERM. Exact and
substring matches come first; close-typo suggestions follow. The search
never contacts the chart repository, so it is safe to use offline.`,
		Flags: []cli.Flag{outputFlag, formatFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			term := cmd.Args().First()
			if term == "" {
				return fmt.Errorf("search term required")
			}

			tools, err := newToolset()
			if err != nil {
				return err
			}

			charts := tools.catalog.Get(ctx, false, false)
			matches := catalog.Filter(charts, term)
			if len(matches) == 0 {
				matches = catalog.Suggest(charts, term)
			}

			return writeOutput(cmd, toEntries(matches))
		},
	}
}

func chartsRefreshCmd() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Force a catalog refresh",
		Flags: []cli.Flag{outputFlag, formatFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tools, err := newToolset()
			if err != nil {
				return err
			}

			charts := tools.catalog.Get(ctx, true, true)
			return writeOutput(cmd, struct {
				Charts int `json:"charts" yaml:"charts"`
			}{Charts: len(charts)})
		},
	}
}
