package regal

import (
	"path"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Separators folded into the digest between fields. They cannot appear in
// attribute names and keep "ab"+"c" distinct from "a"+"bc".
const (
	fieldSep = "\x1e"
	pairSep  = "\x1f"
)

// IdentityOf computes the identity of a template path with a property set.
//
// The path is trimmed and its extension removed, so "card" and "card.html"
// share an identity. Property keys are sorted before folding: equal property
// sets give equal identities regardless of the order they were written in.
// A nil and an empty property set are the same.
func IdentityOf(templatePath string, props Properties) Identity {
	d := xxhash.New()
	_, _ = d.WriteString(normalizeTemplatePath(templatePath))

	folded := make(map[string]string, len(props))
	keys := make([]string, 0, len(props))
	for k, v := range props {
		key := strings.TrimSpace(k)
		folded[key] = strings.TrimSpace(v.String())
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, k := range keys {
		_, _ = d.WriteString(fieldSep)
		_, _ = d.WriteString(k)
		_, _ = d.WriteString(pairSep)
		_, _ = d.WriteString(folded[k])
	}

	return Identity(d.Sum64())
}

// normalizeTemplatePath trims the logical path and drops its extension.
func normalizeTemplatePath(templatePath string) string {
	p := strings.TrimSpace(templatePath)
	return strings.TrimSuffix(p, path.Ext(p))
}
