package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/yacobolo/regal"
)

var k = koanf.New(".")

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	// Resolve config file path from flag
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = ".regal.yaml"
	}

	// Load config file and env vars
	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence, only flags that were explicitly set)
	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (REGAL_* prefix)
	if err := k.Load(env.Provider("REGAL_", ".", func(s string) string {
		// REGAL_TEMPLATES -> templates
		// REGAL_OUTPUT_FORMAT -> output-format
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "REGAL_")),
			"_", "-",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// buildConfig constructs the library's Config struct from koanf state.
// Positional documents replace the configured ones.
func buildConfig(args []string, dryRun bool) regal.Config {
	config := regal.Config{
		TemplateDir: getString("templates", ""),
		OutputDir:   getString("output", regal.DefaultOutputDir),
		Lang:        getString("lang", "en"),
		Documents:   k.Strings("documents"),
		DryRun:      dryRun,
	}
	if len(args) > 0 {
		config.Documents = args
	}
	return config
}

// newLogger builds the CLI logger: debug level with --verbose, warnings
// only otherwise.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if getBool("verbose", false) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// getString returns the value at key, or defaultVal when it is unset or empty.
func getString(key, defaultVal string) string {
	if v := k.String(key); v != "" {
		return v
	}
	return defaultVal
}

// getBool returns the value at key, or defaultVal when it is unset.
func getBool(key string, defaultVal bool) bool {
	if k.Exists(key) {
		return k.Bool(key)
	}
	return defaultVal
}
