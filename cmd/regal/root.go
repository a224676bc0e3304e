package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "regal [documents...]",
	Short: "Compose static HTML documents from reusable components",
	Long: `Compose static HTML documents from reusable HTML components.
Each component is an HTML file with a <template> and an optional <style>.
Documents embed components with <instance regal:path="name">, and every
document is written as a standalone HTML file with its styles inlined.`,
	Example: `  regal --templates site index about
  regal --templates site --output public "pages/**/*.html"
  regal check --templates site index`,
	Args: cobra.ArbitraryArgs,
	// Default behavior: run build when no subcommand is given.
	// We must call loadConfig here because PreRunE of buildCmd
	// is not triggered when delegating via rootCmd.RunE.
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return runBuild(cmd, args, false)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable verbose logging")
	pf.Bool("quiet", false, "Suppress all output (exit code only)")
	pf.Bool("color", false, "Force color output")
	pf.String("config", ".regal.yaml", "Config file path")
	pf.StringP("templates", "t", "", "Directory holding the site's templates (required)")
	pf.StringP("output", "o", "dist", "Directory to write the compiled site into")
	pf.String("lang", "en", "Value of the lang attribute on <html>")
	pf.String("output-format", "", "Report format: text|summary|full|json")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
