package regal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// lineTrimPattern strips leading whitespace (blank lines included) and
// trailing blanks from every line.
var lineTrimPattern = regexp.MustCompile(`(?m)^\s*|[ \t]*$`)

// TrimHTML removes superfluous whitespace from serialized markup.
func TrimHTML(html string) string {
	return lineTrimPattern.ReplaceAllString(html, "")
}

// CompactCSS collapses the whitespace of a style body using the CSS lexer.
//
// Runs of whitespace become a single space, and disappear entirely at the
// ends or next to `{`, `}`, `;` and `,`. Whitespace next to `:` is kept since
// `a :hover` and `a:hover` select different elements. Comments and strings
// are passed through unchanged. Placeholders are opaque: their braces do not
// count as block delimiters.
func CompactCSS(style string) string {
	var placeholders []string
	masked := placeholderPattern.ReplaceAllStringFunc(style, func(match string) string {
		placeholders = append(placeholders, match)
		return placeholderMask(len(placeholders) - 1)
	})

	type token struct {
		tt   css.TokenType
		text string
	}

	var tokens []token
	lexer := css.NewLexer(parse.NewInputString(masked))
	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		tokens = append(tokens, token{tt: tt, text: string(text)})
	}

	var sb strings.Builder
	sb.Grow(len(masked))
	for i, tok := range tokens {
		if tok.tt != css.WhitespaceToken {
			sb.WriteString(tok.text)
			continue
		}
		if i == 0 || i == len(tokens)-1 {
			continue
		}
		if isCompactBoundary(tokens[i-1].tt) || isCompactBoundary(tokens[i+1].tt) {
			continue
		}
		sb.WriteByte(' ')
	}

	out := strings.TrimSpace(sb.String())
	for i, p := range placeholders {
		out = strings.Replace(out, placeholderMask(i), p, 1)
	}
	return out
}

// placeholderMask is a CSS identifier standing in for a placeholder while
// the style body is lexed.
func placeholderMask(i int) string {
	return fmt.Sprintf("__regal_placeholder_%d__", i)
}

func isCompactBoundary(tt css.TokenType) bool {
	switch tt {
	case css.LeftBraceToken, css.RightBraceToken, css.SemicolonToken, css.CommaToken:
		return true
	}
	return false
}
