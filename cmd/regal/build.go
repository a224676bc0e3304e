package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yacobolo/regal"
)

var buildCmd = &cobra.Command{
	Use:   "build [documents...]",
	Short: "Compose documents and write them to the output directory",
	Long: `Render each document with every component it references and write it
to <output>/<document>.html. Documents are template names ("index"), template
files ("blog/post.html") or glob patterns ("pages/**/*.html").`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, args, false)
	},
}

// runBuild is shared between `regal`, `regal build` and `regal check`.
func runBuild(cmd *cobra.Command, args []string, dryRun bool) error {
	config := buildConfig(args, dryRun)
	if config.TemplateDir == "" || len(config.Documents) == 0 {
		_ = cmd.Help()
		return fmt.Errorf("--templates and at least one document are required")
	}

	ctx := regal.WithLogger(cmd.Context(), newLogger())

	result, err := regal.Build(ctx, config)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	quiet := getBool("quiet", false)
	format := regal.DetermineOutputFormat(getString("output-format", ""), quiet)

	if !quiet {
		useColors := regal.ShouldUseColors(getBool("color", false))
		regal.WriteOutput(cmd.OutOrStdout(), result, format, useColors)
	}

	if result.HasErrors() {
		return errFailed
	}
	return nil
}
