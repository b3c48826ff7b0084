package main

import (
	"os"

	"github.com/minsuk/triblend/cmd/triblend/commands"
)

// main is the entry point for the triblend CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
