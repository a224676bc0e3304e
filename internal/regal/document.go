package regal

import (
	"strings"

	"golang.org/x/net/html"
)

// Document is a fully assembled HTML document.
type Document struct {
	Path         string            // document template path as requested
	HTML         string            // final output
	Root         *TemplateInstance // the document's own instance
	Dependencies []Identity        // every instance it uses, in discovery order
}

// CollectStyles concatenates the style of top and then of every dependency,
// in order. Each distinct style text appears once and empty styles are
// skipped. Dependencies lookup cannot resolve are ignored.
func CollectStyles(top *TemplateInstance, deps []Identity, lookup func(Identity) *TemplateInstance) string {
	var sb strings.Builder
	seen := map[string]bool{}
	add := func(style string) {
		if style == "" || seen[style] {
			return
		}
		seen[style] = true
		sb.WriteString(style)
	}

	add(top.Style())
	for _, id := range deps {
		if dep := lookup(id); dep != nil {
			add(dep.Style())
		}
	}
	return sb.String()
}

// AssembleDocument wraps the rendered markup of top in the document shell and
// injects the collected stylesheet into its head. A head is created when the
// markup has none.
func AssembleDocument(top *TemplateInstance, deps []Identity, lookup func(Identity) *TemplateInstance, lang string) string {
	if lang == "" {
		lang = DefaultLang
	}
	styleBlock := "<style>" + CollectStyles(top, deps, lookup) + "</style>\n"
	markup := top.Markup()

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString(`<html lang="` + html.EscapeString(lang) + `">` + "\n")

	if i := strings.Index(markup, "</head>"); i >= 0 {
		sb.WriteString(markup[:i])
		sb.WriteString(styleBlock)
		sb.WriteString(markup[i:])
	} else {
		sb.WriteString("<head>\n")
		sb.WriteString(styleBlock)
		sb.WriteString("</head>\n")
		sb.WriteString(markup)
	}

	sb.WriteString("\n</html>")
	return TrimHTML(sb.String())
}
