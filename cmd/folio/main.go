// Package main is the entry point of the folio CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/folio/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
