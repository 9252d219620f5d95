// Package main provides the ragquery REPL entry point.
package main

import (
	"os"

	"github.com/joseon-annals/rag-service/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
