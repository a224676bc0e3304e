package regal

import (
	"encoding/json"
	"io"
	"time"
)

// JSONOutput represents the structured JSON export schema
type JSONOutput struct {
	Version   string           `json:"version"`
	Timestamp string           `json:"timestamp"`
	Summary   JSONSummary      `json:"summary"`
	Stats     JSONStats        `json:"stats"`
	Documents []DocumentResult `json:"documents"`
	Issues    []Issue          `json:"issues"`
}

// JSONSummary contains high-level counts
type JSONSummary struct {
	Documents  int   `json:"documents"`
	Built      int   `json:"built"`
	Failed     int   `json:"failed"`
	Warnings   int   `json:"warnings"`
	DryRun     bool  `json:"dry_run"`
	DurationMS int64 `json:"duration_ms"`
}

// JSONStats contains engine statistics
type JSONStats struct {
	TemplatesLoaded   int `json:"templates_loaded"`
	InstancesCreated  int `json:"instances_created"`
	InstancesRendered int `json:"instances_rendered"`
	GlobMatches       int `json:"glob_matches"`
	GlobIgnored       int `json:"glob_ignored"`
}

// WriteJSON writes the build result as JSON
func WriteJSON(w io.Writer, result *BuildResult) error {
	output := buildJSONOutput(result, time.Now())
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildJSONOutput converts BuildResult to JSONOutput
func buildJSONOutput(result *BuildResult, now time.Time) JSONOutput {
	var warnings int
	for _, issue := range result.Issues {
		if issue.Severity == SeverityWarning {
			warnings++
		}
	}

	// Empty slices, not null
	documents := result.Documents
	if documents == nil {
		documents = []DocumentResult{}
	}
	issues := result.Issues
	if issues == nil {
		issues = []Issue{}
	}

	return JSONOutput{
		Version:   "1.0",
		Timestamp: now.Format(time.RFC3339),
		Summary: JSONSummary{
			Documents:  len(result.Documents),
			Built:      result.Built,
			Failed:     result.Failed,
			Warnings:   warnings,
			DryRun:     result.DryRun,
			DurationMS: result.Duration.Milliseconds(),
		},
		Stats: JSONStats{
			TemplatesLoaded:   result.Stats.SourcesLoaded,
			InstancesCreated:  result.Stats.InstancesCreated,
			InstancesRendered: result.Stats.Renders,
			GlobMatches:       result.Discovery.Matched,
			GlobIgnored:       result.Discovery.Ignored,
		},
		Documents: documents,
		Issues:    issues,
	}
}
