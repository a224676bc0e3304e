package regal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfig is returned when the build cannot start, e.g. the template
	// root is missing or not a directory.
	ErrConfig = errors.New("invalid configuration")

	// ErrSourceUnreadable is returned when a referenced template file
	// cannot be read. The document being rendered is abandoned.
	ErrSourceUnreadable = errors.New("template source unreadable")

	// ErrUnresolvableReference is returned when a reference element has an
	// empty or missing path attribute.
	ErrUnresolvableReference = errors.New("unresolvable component reference")

	// ErrReferenceCycle is returned when a template is re-entered while it
	// is still being rendered (a embeds b embeds a).
	ErrReferenceCycle = errors.New("component reference cycle")
)

// RenderError ties a failure to the template being rendered when it
// happened. It unwraps to the underlying cause, so errors.Is works against
// the sentinels above.
type RenderError struct {
	Template string // template path of the failing instance
	Chain    []string
	Err      error
}

func (e *RenderError) Error() string {
	if len(e.Chain) > 1 {
		return fmt.Sprintf("render %s (%s): %v", e.Template, strings.Join(e.Chain, " -> "), e.Err)
	}
	return fmt.Sprintf("render %s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// renderErr wraps err unless it already carries a RenderError, in which case
// the innermost template is kept.
func renderErr(template string, chain []string, err error) error {
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return &RenderError{
		Template: template,
		Chain:    append([]string(nil), chain...),
		Err:      err,
	}
}
