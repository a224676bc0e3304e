// Package regal composes static HTML documents from reusable HTML
// components.
//
// A component is an HTML file holding a <template> with its markup and an
// optional <style>. Documents embed components with a reference element:
//
//	<instance regal:path="card" :title="Hello">
//		<p>Shown where the card says {{ in }}.</p>
//	</instance>
//
// Every distinct (component, properties) pair is rendered once per build and
// gets a stable scope token, so component styles can be namespaced with
// {{ _scope_ }}. Each document is written as a standalone HTML file with the
// styles of every component it uses inlined in its head.
//
// # Building
//
//	result, err := regal.Build(ctx, regal.Config{
//		TemplateDir: "templates",
//		OutputDir:   "dist",
//		Documents:   []string{"index", "pages/**/*.html"},
//	})
//
// Configuration problems are returned as errors wrapping ErrConfig. Document
// failures are collected in result.Issues and do not stop other documents.
//
// # CLI Tool
//
// regal also provides a CLI tool. Install with:
//
//	go install github.com/yacobolo/regal/cmd/regal@latest
package regal

import (
	"context"
	"log/slog"

	core "github.com/yacobolo/regal/internal/regal"
)

const tracerName = "github.com/yacobolo/regal"

// Errors reported by Build and found in issue chains.
var (
	ErrConfig                = core.ErrConfig
	ErrSourceUnreadable      = core.ErrSourceUnreadable
	ErrUnresolvableReference = core.ErrUnresolvableReference
	ErrReferenceCycle        = core.ErrReferenceCycle
)

// Stats counts the engine work of one build.
type Stats = core.Stats

// WithLogger returns a context that makes Build log its progress to logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return core.LoggingContext(ctx, logger)
}
