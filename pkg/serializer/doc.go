/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

// Package serializer renders command output in one of three formats:
//
//   - JSON: machine-readable structured data with indentation
//   - YAML: human-readable configuration format
//   - Table: tabular output with flattened keys
//
// Usage:
//
//	w := serializer.NewStdoutWriter(serializer.FormatTable)
//	defer w.Close()
//	if err := w.Serialize(data); err != nil {
//		return err
//	}
package serializer
