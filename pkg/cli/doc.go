/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the fleetctl command-line interface.
//
// # Overview
//
// fleetctl generates Rancher Fleet deployment descriptors for EEA Helm
// charts. It can work from the EEA chart repository catalog or rebuild
// the configuration of a release already deployed in a cluster.
//
// # Commands
//
// charts - Browse the chart catalog:
//
//	fleetctl charts list [--category Backend] [--filter postgres] [--refresh]
//	fleetctl charts search postgers
//	fleetctl charts refresh
//
// releases - List deployed releases:
//
//	fleetctl releases --namespace data
//
// generate - Generate deployment descriptors:
//
//	fleetctl generate --chart postgres --namespace data
//	fleetctl generate --release db --namespace data --target-cluster prod
//
// context - Inspect the active Rancher context:
//
//	fleetctl context show
//	fleetctl context detect
//	fleetctl context namespaces
//
// # Global Flags
//
//	--output, -o   Output file path (default: stdout)
//	--format, -t   Output format: table, json, yaml (default: table)
//
// # Environment Variables
//
//	LOG_LEVEL   Set logging verbosity (debug, info, warn, error)
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/eea/fleetgen/pkg/cli.version=1.0.0'"
package cli
