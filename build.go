package regal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	core "github.com/yacobolo/regal/internal/regal"
)

// DefaultOutputDir is where documents are written when Config.OutputDir is
// empty.
const DefaultOutputDir = "dist"

// errWrite marks failures writing an output file.
var errWrite = errors.New("write output")

// Config holds configuration for a build
type Config struct {
	TemplateDir string   // template root; every template path is relative to it
	OutputDir   string   // defaults to "dist"
	Documents   []string // names, files or doublestar patterns relative to TemplateDir
	Lang        string   // <html lang>, defaults to "en"
	DryRun      bool     // render and report, write nothing
}

// DocumentResult is the outcome of one document.
type DocumentResult struct {
	Document     string `json:"document"`
	OutputPath   string `json:"output_path,omitempty"`
	Dependencies int    `json:"dependencies"`
	Bytes        int    `json:"bytes"`
	Failed       bool   `json:"failed"`
}

// BuildResult contains the results of a build
type BuildResult struct {
	Documents []DocumentResult
	Issues    []Issue
	Discovery DiscoverStats
	Stats     Stats
	Built     int
	Failed    int
	DryRun    bool
	Duration  time.Duration
}

// HasErrors reports whether any document failed.
func (r *BuildResult) HasErrors() bool {
	return r.Failed > 0
}

// Build renders every requested document against one shared engine and
// writes the results under Config.OutputDir.
//
// A document that fails is reported as an Issue and produces no file; the
// other documents are still built. The returned error is reserved for
// configuration problems, which wrap ErrConfig.
func Build(ctx context.Context, config Config) (result *BuildResult, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "regal.Build")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	log := core.LoggerFrom(ctx)
	start := time.Now()

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	// 1. Expand documents
	discovery, err := DiscoverDocuments(config.TemplateDir, config.Documents)
	if err != nil {
		return nil, err
	}
	if len(discovery.Documents) == 0 && len(discovery.Unmatched) == 0 {
		return nil, fmt.Errorf("%w: no documents given", ErrConfig)
	}

	result = &BuildResult{
		Discovery: discovery.Stats,
		DryRun:    config.DryRun,
	}
	for _, pattern := range discovery.Unmatched {
		result.Issues = append(result.Issues, Issue{
			Document: pattern,
			Kind:     IssueNoMatch,
			Text:     fmt.Sprintf("pattern %q matched no documents", pattern),
			Severity: SeverityWarning,
		})
	}

	log.DebugContext(ctx, "discovered documents",
		slog.Int("documents", len(discovery.Documents)),
		slog.Int("ignored", discovery.Stats.Ignored))

	// 2. Render and write, one shared engine
	engine := core.NewEngine(os.DirFS(config.TemplateDir), core.WithLang(config.Lang))
	for _, document := range discovery.Documents {
		dr, err := buildDocument(ctx, engine, config, document)
		result.Documents = append(result.Documents, dr)
		if err != nil {
			log.DebugContext(ctx, "document failed", slog.String("document", document), slog.Any("error", err))
			result.Issues = append(result.Issues, newIssue(document, err))
			result.Failed++
			continue
		}
		result.Built++
	}

	span.SetAttributes(
		attribute.Int("regal.documents.built", result.Built),
		attribute.Int("regal.documents.failed", result.Failed))

	result.Stats = engine.Stats()
	result.Duration = time.Since(start)
	return result, nil
}

// buildDocument renders one document and, unless this is a dry run, writes
// it. Nothing is written when rendering fails.
func buildDocument(ctx context.Context, engine *core.Engine, config Config, document string) (DocumentResult, error) {
	dr := DocumentResult{Document: document}

	doc, err := engine.RenderDocument(ctx, document)
	if err != nil {
		dr.Failed = true
		return dr, err
	}
	dr.Dependencies = len(doc.Dependencies)
	dr.Bytes = len(doc.HTML)

	outPath := OutputPath(config.OutputDir, document)
	dr.OutputPath = outPath
	if config.DryRun {
		return dr, nil
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		dr.Failed = true
		return dr, fmt.Errorf("%w: create directory for %s: %w", errWrite, outPath, err)
	}
	if err := os.WriteFile(outPath, []byte(doc.HTML), 0o644); err != nil {
		dr.Failed = true
		return dr, fmt.Errorf("%w: %s: %w", errWrite, outPath, err)
	}

	core.LoggerFrom(ctx).DebugContext(ctx, "wrote document",
		slog.String("document", document),
		slog.String("output", outPath),
		slog.Int("bytes", dr.Bytes))

	return dr, nil
}

// validateConfig fills defaults and checks the template root.
func validateConfig(config *Config) error {
	if config.TemplateDir == "" {
		return fmt.Errorf("%w: template directory is required", ErrConfig)
	}
	info, err := os.Stat(config.TemplateDir)
	if err != nil {
		return fmt.Errorf("%w: template directory %s: %w", ErrConfig, config.TemplateDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: template directory %s is not a directory", ErrConfig, config.TemplateDir)
	}
	if len(config.Documents) == 0 {
		return fmt.Errorf("%w: no documents given", ErrConfig)
	}
	if config.OutputDir == "" {
		config.OutputDir = DefaultOutputDir
	}
	if config.Lang == "" {
		config.Lang = core.DefaultLang
	}
	return nil
}
