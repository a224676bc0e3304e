// Package main provides the regal CLI tool for composing static HTML
// documents from components.
package main

import (
	"errors"
	"fmt"
	"os"
)

// errFailed signals that the command already reported its failure and only
// the exit code is left to set.
var errFailed = errors.New("build failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
