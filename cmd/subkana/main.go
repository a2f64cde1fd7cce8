// Package main is the entry point for the subkana CLI.
package main

import (
	"os"

	"github.com/f3rmion/subkana/cmd/subkana/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
