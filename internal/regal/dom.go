package regal

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// documentTags are the first tags that mark a template as a whole document
// body rather than a fragment.
var documentTags = map[string]bool{
	"html": true,
	"head": true,
	"body": true,
}

// tree is a parsed template body. root is a synthetic element that holds the
// parsed nodes; it doubles as the parsing context and is never serialized.
type tree struct {
	root *html.Node
}

// parseTree parses markup as a fragment. Document-level markup (starting
// with head, body or html) is parsed in <html> context so head and body
// survive; everything else is parsed in <body> context.
func parseTree(markup string) (*tree, error) {
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if documentTags[firstTagName(markup)] {
		root = &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), root)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &tree{root: root}, nil
}

// String serializes the tree without the synthetic root.
func (t *tree) String() (string, error) {
	return renderChildren(t.root, false)
}

// findByTag returns every element named tag, deepest first. Elements of
// equal depth keep document order.
func (t *tree) findByTag(tag string) []*html.Node {
	type found struct {
		node  *html.Node
		depth int
	}

	var all []found
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag {
				all = append(all, found{node: c, depth: depth})
			}
			walk(c, depth+1)
		}
	}
	walk(t.root, 1)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].depth > all[j].depth
	})

	nodes := make([]*html.Node, len(all))
	for i, f := range all {
		nodes[i] = f.node
	}
	return nodes
}

// replaceNode parses markup in the context of old's parent and splices the
// resulting nodes in place of old.
func replaceNode(old *html.Node, markup string) error {
	parent := old.Parent
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		parent.InsertBefore(n, old)
	}
	parent.RemoveChild(old)
	return nil
}

// renderChildren serializes the children of n. With contentOnly set, only
// element and text children are included.
func renderChildren(n *html.Node, contentOnly bool) (string, error) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if contentOnly && c.Type != html.ElementNode && c.Type != html.TextNode {
			continue
		}
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return TrimHTML(sb.String()), nil
}

// hasContent reports whether n has an element child or a non-blank text
// child.
func hasContent(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			return true
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return true
			}
		}
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// closeReferenceElements rewrites <instance ... /> as <instance ...></instance>.
// HTML ignores the self-closing flag on non-void elements, which would
// otherwise swallow the following siblings into the reference.
func closeReferenceElements(markup string) string {
	if !strings.Contains(markup, "/>") {
		return markup
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	var sb strings.Builder
	sb.Grow(len(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return sb.String()
		}
		raw := string(z.Raw())
		if tt == html.SelfClosingTagToken {
			if name, _ := z.TagName(); string(name) == ReferenceTag {
				sb.WriteString(strings.TrimSuffix(raw, "/>"))
				sb.WriteString("></" + ReferenceTag + ">")
				continue
			}
		}
		sb.WriteString(raw)
	}
}
