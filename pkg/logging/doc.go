/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

// Package logging wraps log/slog with fleetgen defaults: structured JSON
// output to stderr, module and version context on every record, LOG_LEVEL
// based configuration, and source location tracking at debug level.
//
// Set the default logger early in main():
//
//	logging.SetDefaultStructuredLogger("fleetctl", version)
//	slog.Info("starting", "catalog", repoURL)
package logging
