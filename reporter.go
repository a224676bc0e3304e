package regal

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Reporter prints build results for humans
type Reporter struct {
	w         io.Writer
	useColors bool
}

// NewReporter creates a reporter writing to w
func NewReporter(w io.Writer, useColors bool) *Reporter {
	return &Reporter{
		w:         w,
		useColors: useColors,
	}
}

// ShouldUseColors determines if colors should be enabled
func ShouldUseColors(force bool) bool {
	// Explicit flag wins
	if force {
		return true
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// CI systems that render ANSI colors
	if os.Getenv("FORCE_COLOR") != "" || os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}

	// Auto-detect TTY
	if fileInfo, err := os.Stdout.Stat(); err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
		return true
	}

	return false
}

// PrintDocuments prints one line per document
func (r *Reporter) PrintDocuments(result *BuildResult) {
	for _, doc := range result.Documents {
		if doc.Failed {
			fmt.Fprintf(r.w, "%s %s\n",
				RenderStyle(StyleRed, "✗", r.useColors),
				RenderStyle(StyleCyan, doc.Document, r.useColors))
			continue
		}

		verb := "→"
		if result.DryRun {
			verb = "⇢"
		}
		fmt.Fprintf(r.w, "%s %s %s %s %s\n",
			RenderStyle(StyleGreen, "✓", r.useColors),
			RenderStyle(StyleCyan, doc.Document, r.useColors),
			verb,
			doc.OutputPath,
			RenderStyle(StyleGray, fmt.Sprintf("(%s)", pluralizeCount(doc.Dependencies, "component", "components")), r.useColors))
	}
}

// PrintIssues prints issues sorted by document, errors first
func (r *Reporter) PrintIssues(issues []Issue) {
	sorted := make([]Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity != sorted[j].Severity {
			return sorted[i].Severity == SeverityError
		}
		return sorted[i].Document < sorted[j].Document
	})

	if len(sorted) > 0 {
		fmt.Fprintln(r.w, "")
	}
	for _, issue := range sorted {
		r.printIssue(issue)
	}
}

// printIssue formats a single issue: document: message (kind)
func (r *Reporter) printIssue(issue Issue) {
	style := StyleRed
	if issue.Severity == SeverityWarning {
		style = StyleYellow
	}

	fmt.Fprintf(r.w, "%s %s %s\n",
		RenderStyle(style, issue.Document+":", r.useColors),
		issue.Text,
		RenderStyle(StyleGray, "("+issue.Kind+")", r.useColors))

	if len(issue.Chain) > 1 {
		fmt.Fprintf(r.w, "\t%s\n", RenderStyle(StyleYellow, strings.Join(issue.Chain, " -> "), r.useColors))
	}
}

// PrintSummary outputs the document count summary
func (r *Reporter) PrintSummary(result *BuildResult) {
	var warnings int
	for _, issue := range result.Issues {
		if issue.Severity == SeverityWarning {
			warnings++
		}
	}

	fmt.Fprintln(r.w, "")

	verb := "built"
	if result.DryRun {
		verb = "checked"
	}
	line := fmt.Sprintf("%s %s", pluralizeCount(result.Built, "document", "documents"), verb)
	if result.Failed > 0 {
		line += fmt.Sprintf(", %d failed", result.Failed)
	}
	if warnings > 0 {
		line += ", " + pluralizeCount(warnings, "warning", "warnings")
	}

	style := StyleGreen
	if result.Failed > 0 {
		style = StyleRed
	}
	fmt.Fprintf(r.w, "%s %s\n", RenderStyle(style, line, r.useColors),
		RenderStyle(StyleGray, fmt.Sprintf("in %s", result.Duration.Round(time.Millisecond)), r.useColors))
}

// PrintStatistics outputs engine statistics
func (r *Reporter) PrintStatistics(result *BuildResult) {
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleCyan, "Build Statistics", r.useColors))
	fmt.Fprintln(r.w, "----------------")

	fmt.Fprintf(r.w, "Documents:          %d\n", len(result.Documents))
	fmt.Fprintf(r.w, "Templates Loaded:   %d\n", result.Stats.SourcesLoaded)
	fmt.Fprintf(r.w, "Instances Created:  %d\n", result.Stats.InstancesCreated)
	fmt.Fprintf(r.w, "Instances Rendered: %d\n", result.Stats.Renders)
	if result.Discovery.Matched > 0 {
		fmt.Fprintf(r.w, "Globbed Files:      %d (%d ignored)\n", result.Discovery.Matched, result.Discovery.Ignored)
	}
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// UseColors returns whether colors are enabled
func (r *Reporter) UseColors() bool {
	return r.useColors
}
