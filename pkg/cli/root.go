/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/eea/fleetgen/pkg/catalog"
	"github.com/eea/fleetgen/pkg/cluster"
	"github.com/eea/fleetgen/pkg/config"
	"github.com/eea/fleetgen/pkg/logging"
	"github.com/eea/fleetgen/pkg/runner"
	"github.com/eea/fleetgen/pkg/serializer"
)

const (
	name           = "fleetctl"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatTable),
		Usage: fmt.Sprintf("Output format (supported values: %v)",
			serializer.SupportedFormats()),
	}
)

// toolset bundles the shared dependencies every command needs.
type toolset struct {
	runner  runner.Runner
	store   *config.Store
	cluster *cluster.Manager
	catalog *catalog.Cache
}

func newToolset() (*toolset, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}

	r := runner.NewExecRunner()
	store := config.NewStore(home)

	return &toolset{
		runner:  r,
		store:   store,
		cluster: cluster.NewManager(r, store),
		catalog: catalog.NewCache(r, filepath.Join(home, catalog.CacheFileName)),
	}, nil
}

// Execute runs the CLI. Called once by main.
func Execute() {
	logging.SetDefaultStructuredLogger(name, version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	cmd := &cli.Command{
		Name:    name,
		Usage:   "Generate GitOps deployment descriptors for EEA Helm charts",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			chartsCmd(),
			releasesCmd(),
			generateCmd(),
			contextCmd(),
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// writeOutput serializes result to the destination selected by the
// shared output and format flags.
func writeOutput(cmd *cli.Command, result any) error {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return fmt.Errorf("unknown output format: %q", outFormat)
	}

	w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	defer w.Close()
	return w.Serialize(result)
}
