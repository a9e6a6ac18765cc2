// Package main provides the entry point for the patternmatch CLI.
package main

import (
	"os"

	"github.com/uigen/patternmatch/cmd/patternmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
