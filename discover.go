package regal

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// DiscoverStats tracks document discovery
type DiscoverStats struct {
	Matched int // files matched by glob patterns
	Ignored int // matched files dropped by .gitignore
}

// Discovery is the outcome of expanding the requested documents.
type Discovery struct {
	Documents []string // in request order, deduplicated
	Unmatched []string // glob patterns that matched nothing
	Stats     DiscoverStats
}

// isPattern reports whether a requested document is a glob.
func isPattern(document string) bool {
	return strings.ContainsAny(document, "*?[{")
}

// loadGitIgnore compiles the .gitignore at the template root. A missing file
// yields nil.
func loadGitIgnore(templateDir string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(templateDir, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// DiscoverDocuments expands the requested documents against the template
// root. Plain names ("index", "blog/post.html") are kept as given, even when
// the file does not exist, so the failure is reported against the document.
// Glob patterns are matched with doublestar and filtered through the
// .gitignore at the template root.
func DiscoverDocuments(templateDir string, requested []string) (*Discovery, error) {
	fsys := os.DirFS(templateDir)
	gi := loadGitIgnore(templateDir)

	d := &Discovery{}
	seen := make(map[string]bool)
	add := func(document string) {
		key := strings.TrimSuffix(document, path.Ext(document))
		if seen[key] {
			return
		}
		seen[key] = true
		d.Documents = append(d.Documents, document)
	}

	for _, req := range requested {
		req = strings.TrimPrefix(strings.TrimSpace(filepath.ToSlash(req)), "/")
		if req == "" {
			continue
		}

		if !isPattern(req) {
			add(req)
			continue
		}

		if !doublestar.ValidatePattern(req) {
			return nil, fmt.Errorf("%w: invalid document pattern %q", ErrConfig, req)
		}

		matches, err := doublestar.Glob(fsys, req, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob pattern %q: %w", req, err)
		}
		sort.Strings(matches)

		found := 0
		for _, match := range matches {
			d.Stats.Matched++
			if gi != nil && gi.MatchesPath(match) {
				d.Stats.Ignored++
				continue
			}
			found++
			add(match)
		}
		if found == 0 {
			d.Unmatched = append(d.Unmatched, req)
		}
	}

	return d, nil
}

// OutputPath maps a document to its file under outputDir: the document's
// extension, if any, is replaced by .html.
func OutputPath(outputDir, document string) string {
	document = strings.TrimSuffix(document, path.Ext(document))
	return filepath.Join(outputDir, filepath.FromSlash(document)+".html")
}
