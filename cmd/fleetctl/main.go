/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"github.com/eea/fleetgen/pkg/cli"
)

func main() {
	cli.Execute()
}
