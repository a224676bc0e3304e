package main

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [documents...]",
	Short: "Render documents without writing them",
	Long: `Compose every document exactly like build, but write nothing.
Exits 1 if any document fails, so it can guard a CI pipeline or a
pre-commit hook.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, args, true)
	},
}
