package main

import (
	"os"

	"github.com/custodia-labs/scribe/internal/adapters/driving/cli"
)

func main() {
	cli.SetBootstrap(bootstrap)
	// Cobra has already reported the error.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
