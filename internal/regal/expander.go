package regal

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{ name }} where name has no whitespace and no
// closing brace. Whitespace around the name is optional.
var placeholderPattern = regexp.MustCompile(`{{\s*([^\s}]*)\s*}}`)

// HasPlaceholders reports whether s contains at least one placeholder.
func HasPlaceholders(s string) bool {
	return placeholderPattern.MatchString(s)
}

// Expand substitutes every placeholder in text with its value for inst.
// Substituted values are never re-scanned.
func Expand(inst *TemplateInstance, text string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		switch name {
		case placeholderID:
			return inst.Token
		case placeholderScope:
			return ScopePrefix + inst.Token
		}
		return lookupProperty(inst.Properties, name)
	})
}

// lookupProperty falls back to the lower-cased name because the HTML parser
// folds attribute names, so :myTitle is captured as "mytitle".
func lookupProperty(props Properties, name string) string {
	if v, ok := props[name]; ok {
		return v.String()
	}
	if lower := strings.ToLower(name); lower != name {
		if v, ok := props[lower]; ok {
			return v.String()
		}
	}
	return ""
}
