package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configFileName = ".regal.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .regal.yaml config file",
	Long: `Create a .regal.yaml configuration file in the current directory with sensible defaults.
With --interactive, each setting is asked for instead.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")
		interactive, _ := cmd.Flags().GetBool("interactive")

		if _, err := os.Stat(configFileName); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configFileName)
		}

		content := []byte(defaultConfig)
		if interactive {
			fc, err := promptConfig()
			if err != nil {
				return fmt.Errorf("reading answers: %w", err)
			}
			if content, err = marshalConfig(fc); err != nil {
				return err
			}
		}

		if err := os.WriteFile(configFileName, content, 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configFileName)
		return nil
	},
}

const configHeader = `# regal configuration
# Docs: https://github.com/yacobolo/regal
`

const defaultConfig = configHeader + `
# Directory holding the site's templates (required)
templates: templates

# Directory to write the compiled site into
output: dist

# Value of the lang attribute on <html>
lang: en

# Documents to build: template names, files or glob patterns
documents:
  - index

output-format: text  # text | summary | full | json
verbose: false
`

// fileConfig is the shape of .regal.yaml.
type fileConfig struct {
	Templates    string   `yaml:"templates"`
	Output       string   `yaml:"output"`
	Lang         string   `yaml:"lang"`
	Documents    []string `yaml:"documents"`
	OutputFormat string   `yaml:"output-format"`
	Verbose      bool     `yaml:"verbose"`
}

// initAnswers receives the interactive answers.
type initAnswers struct {
	Templates string `survey:"templates"`
	Output    string `survey:"output"`
	Lang      string `survey:"lang"`
	Documents string `survey:"documents"`
	Format    string `survey:"format"`
}

// ask is replaced in tests.
var ask = survey.Ask

func promptConfig() (fileConfig, error) {
	qs := []*survey.Question{
		{
			Name:     "templates",
			Prompt:   &survey.Input{Message: "Template directory:", Default: "templates"},
			Validate: survey.Required,
		},
		{
			Name:   "output",
			Prompt: &survey.Input{Message: "Output directory:", Default: "dist"},
		},
		{
			Name:   "lang",
			Prompt: &survey.Input{Message: "Document language:", Default: "en"},
		},
		{
			Name: "documents",
			Prompt: &survey.Input{
				Message: "Documents:",
				Default: "index",
				Help:    "Space or comma separated template names, files or glob patterns",
			},
			Validate: survey.Required,
		},
		{
			Name: "format",
			Prompt: &survey.Select{
				Message: "Report format:",
				Options: []string{"text", "summary", "full", "json"},
				Default: "text",
			},
		},
	}

	var answers initAnswers
	if err := ask(qs, &answers); err != nil {
		return fileConfig{}, err
	}

	return fileConfig{
		Templates:    strings.TrimSpace(answers.Templates),
		Output:       strings.TrimSpace(answers.Output),
		Lang:         strings.TrimSpace(answers.Lang),
		Documents:    splitList(answers.Documents),
		OutputFormat: answers.Format,
	}, nil
}

func marshalConfig(fc fileConfig) ([]byte, error) {
	body, err := yaml.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return append([]byte(configHeader+"\n"), body...), nil
}

// splitList splits on commas and whitespace, dropping empty entries.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
	initCmd.Flags().BoolP("interactive", "i", false, "Ask for each setting")
}
