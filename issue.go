package regal

import (
	"errors"

	core "github.com/yacobolo/regal/internal/regal"
)

// Issue describes why one document could not be built.
type Issue struct {
	Document string   `json:"document"`        // document as requested: "index.html"
	Template string   `json:"template"`        // template that failed, may be a nested component
	Kind     string   `json:"kind"`            // one of the Issue* kinds below
	Text     string   `json:"text"`            // full error message
	Severity string   `json:"severity"`        // "error" fails the build, "warning" does not
	Chain    []string `json:"chain,omitempty"` // templates being rendered when it failed
}

// IssueSeverity constants
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue kinds
const (
	IssueUnreadableSource      = "unreadable-source"
	IssueUnresolvableReference = "unresolvable-reference"
	IssueReferenceCycle        = "reference-cycle"
	IssueWrite                 = "write"
	IssueRender                = "render"
	IssueNoMatch               = "no-match"
)

// newIssue classifies a document failure.
func newIssue(document string, err error) Issue {
	issue := Issue{
		Document: document,
		Template: document,
		Kind:     IssueRender,
		Text:     err.Error(),
		Severity: SeverityError,
	}

	var re *core.RenderError
	if errors.As(err, &re) {
		issue.Template = re.Template
		if len(re.Chain) > 1 {
			issue.Chain = re.Chain
		}
	}

	switch {
	case errors.Is(err, core.ErrReferenceCycle):
		issue.Kind = IssueReferenceCycle
	case errors.Is(err, core.ErrUnresolvableReference):
		issue.Kind = IssueUnresolvableReference
	case errors.Is(err, core.ErrSourceUnreadable):
		issue.Kind = IssueUnreadableSource
	case errors.Is(err, errWrite):
		issue.Kind = IssueWrite
	}

	return issue
}
