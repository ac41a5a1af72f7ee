// Package main is the entry point for the ingot binary.
package main

import (
	"os"

	"github.com/wdm0006/ingot/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
