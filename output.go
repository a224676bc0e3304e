package regal

import (
	"io"
	"os"
)

// OutputFormat selects how a build result is reported
type OutputFormat string

// Output formats
const (
	OutputText    OutputFormat = "text"    // one line per document, issues, summary
	OutputSummary OutputFormat = "summary" // issues, summary and statistics
	OutputFull    OutputFormat = "full"    // everything
	OutputJSON    OutputFormat = "json"
)

// DetermineOutputFormat selects the output format based on flags
func DetermineOutputFormat(formatFlag string, quiet bool) OutputFormat {
	// Explicit --quiet wins (exit code only, output suppressed by the caller)
	if quiet {
		return OutputSummary
	}

	switch formatFlag {
	case "text":
		return OutputText
	case "summary":
		return OutputSummary
	case "full":
		return OutputFull
	case "json":
		return OutputJSON
	default:
		// Unknown or empty, fall through to the default
	}

	return DetermineDefaultOutputFormat()
}

// DetermineDefaultOutputFormat returns the default output format
func DetermineDefaultOutputFormat() OutputFormat {
	return OutputText
}

// WriteOutput writes the build result in the specified format
func WriteOutput(w io.Writer, result *BuildResult, format OutputFormat, useColors bool) {
	reporter := NewReporter(w, useColors)

	switch format {
	case OutputText:
		reporter.PrintDocuments(result)
		reporter.PrintIssues(result.Issues)
		reporter.PrintSummary(result)

	case OutputSummary:
		reporter.PrintIssues(result.Issues)
		reporter.PrintSummary(result)
		reporter.PrintStatistics(result)

	case OutputFull:
		reporter.PrintDocuments(result)
		reporter.PrintIssues(result.Issues)
		reporter.PrintSummary(result)
		reporter.PrintStatistics(result)

	case OutputJSON:
		if err := WriteJSON(w, result); err != nil {
			// Log error but don't crash
			os.Stderr.WriteString("Error writing JSON: " + err.Error() + "\n")
		}
	}
}
