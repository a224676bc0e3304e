package regal

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/html"
)

// ResolveTemplatePath maps a logical template path to a slash path inside
// the template root. The default extension is appended when the logical
// path has none.
func ResolveTemplatePath(templatePath string) (string, error) {
	p := strings.TrimSpace(templatePath)
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "", fmt.Errorf("%w: empty template path", ErrSourceUnreadable)
	}

	p = path.Clean(p)
	if path.Ext(p) == "" {
		p += DefaultExtension
	}

	if !fs.ValidPath(p) {
		return "", fmt.Errorf("%w: %q is outside the template root", ErrSourceUnreadable, templatePath)
	}
	return p, nil
}

// LoadSource reads the template file for templatePath from fsys and
// extracts its markup and style bodies.
func LoadSource(fsys fs.FS, templatePath string) (*TemplateSource, error) {
	filePath, err := ResolveTemplatePath(templatePath)
	if err != nil {
		return nil, err
	}

	content, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, filePath, err)
	}

	markup, style := ExtractBodies(string(content))

	return &TemplateSource{
		TemplatePath: strings.TrimSpace(templatePath),
		FilePath:     filePath,
		Markup:       closeReferenceElements(TrimHTML(markup)),
		Style:        CompactCSS(style),
	}, nil
}

// ExtractBodies lexes a template file and returns the concatenated contents
// of its top-level <template> elements and of its <style> elements that are
// not inside a template.
//
// Nested <template> elements are balanced, and raw text (script, style,
// textarea) cannot close a template early. An unterminated template runs to
// the end of the file.
func ExtractBodies(content string) (markup, style string) {
	in := parse.NewInputString(content)
	lexer := html.NewLexer(in)

	var markupBuf, styleBuf strings.Builder
	var (
		depth        int // open <template> elements
		bodyStart    int
		openTemplate bool
		openStyle    bool
		inStyle      bool
	)

	for {
		tt, data := lexer.Next()
		switch tt {
		case html.ErrorToken:
			if depth > 0 {
				markupBuf.WriteString(content[bodyStart:])
			}
			return markupBuf.String(), styleBuf.String()

		case html.StartTagToken:
			switch string(lexer.Text()) {
			case "template":
				openTemplate = true
			case "style":
				openStyle = depth == 0
			}

		case html.StartTagCloseToken:
			if openTemplate {
				depth++
				if depth == 1 {
					bodyStart = in.Offset()
				}
			}
			inStyle = openStyle
			openTemplate, openStyle = false, false

		case html.StartTagVoidToken:
			openTemplate, openStyle = false, false

		case html.TextToken:
			if inStyle {
				styleBuf.Write(data)
			}

		case html.EndTagToken:
			name := string(lexer.Text())
			switch {
			case strings.EqualFold(name, "template") && depth > 0:
				depth--
				if depth == 0 {
					markupBuf.WriteString(content[bodyStart : in.Offset()-len(data)])
				}
			case strings.EqualFold(name, "style"):
				inStyle = false
			}
		}
	}
}

// firstTagName returns the lower-cased name of the first start tag in
// markup, or "" when there is none.
func firstTagName(markup string) string {
	lexer := html.NewLexer(parse.NewInputString(markup))
	for {
		tt, _ := lexer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			return string(lexer.Text())
		}
	}
}
