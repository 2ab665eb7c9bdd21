// Package main provides the pak container CLI: pack, extract, inspect,
// and script-toolchain commands.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
