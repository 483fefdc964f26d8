// Package main is the entry point for the tally server.
package main

import (
	"os"

	"github.com/aussiebroadwan/tally/internal/tally/app"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = app.BuildVersion

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
