package regal

import (
	"strconv"
	"strings"
)

// Markup conventions recognized by the composer.
const (
	ReferenceTag      = "instance"   // <instance regal:path="card">
	ReferencePathAttr = "regal:path" // names the referenced template
	PropertySigil     = ":"          // :title="Hi" becomes property "title"
	InnerProperty     = "in"         // serialized children of a reference
	ScopePrefix       = "rg"         // {{ _scope_ }} = ScopePrefix + token
	DefaultExtension  = ".html"      // appended to logical paths without one
	DefaultLang       = "en"
)

// Reserved placeholder names.
const (
	placeholderID    = "_id_"
	placeholderScope = "_scope_"
)

// tokenWidth is the number of base 32 digits needed for a uint64.
const tokenWidth = 13

// Value is a property value: either text or the boolean flag true.
type Value struct {
	Text string
	Flag bool
}

// Text returns a text property value.
func Text(s string) Value {
	return Value{Text: s}
}

// Flag returns the boolean true property value, produced by an attribute
// written without a value (<instance :open>).
func Flag() Value {
	return Value{Flag: true}
}

// String renders the value for placeholder substitution and identity
// folding. The flag renders as the literal word "true".
func (v Value) String() string {
	if v.Flag {
		return "true"
	}
	return v.Text
}

// Properties maps property names to values. A nil map and an empty map are
// equivalent everywhere.
type Properties map[string]Value

// Identity is the deterministic key of a (template path, properties) pair.
type Identity uint64

// Token is the compact, fixed-width base 32 form of the identity, used for
// {{ _id_ }} and {{ _scope_ }}.
func (id Identity) Token() string {
	s := strconv.FormatUint(uint64(id), 32)
	if len(s) < tokenWidth {
		s = strings.Repeat("0", tokenWidth-len(s)) + s
	}
	return s
}

// Scope is the CSS-safe namespace for one instance.
func (id Identity) Scope() string {
	return ScopePrefix + id.Token()
}

func (id Identity) String() string {
	return id.Token()
}

// TemplateSource is the immutable, parsed content of one template file.
type TemplateSource struct {
	TemplatePath string // logical name used in references: "card"
	FilePath     string // slash path inside the template root: "card.html"
	Markup       string // concatenated bodies of top-level <template> elements
	Style        string // concatenated, compacted bodies of top-level <style> elements
}

// TemplateInstance is one concrete usage of a template with a specific
// property set. Its rendered fields are written once by the composer.
type TemplateInstance struct {
	ID         Identity
	Token      string
	Source     *TemplateSource
	Properties Properties

	rendered bool
	markup   string
	style    string
	deps     []Identity
}

// Markup returns the rendered markup, empty until rendered.
func (ti *TemplateInstance) Markup() string {
	return ti.markup
}

// Style returns the rendered style, empty until rendered.
func (ti *TemplateInstance) Style() string {
	return ti.style
}

// Dependencies returns the identities transitively used by the instance, in
// order of first discovery. Nil until rendered.
func (ti *TemplateInstance) Dependencies() []Identity {
	return ti.deps
}

// Rendered reports whether the composer has finished this instance.
func (ti *TemplateInstance) Rendered() bool {
	return ti.rendered
}

// Stats counts the work an engine performed. Tests use it to prove that
// sources are read once and instances are rendered once.
type Stats struct {
	SourcesLoaded    int
	InstancesCreated int
	Renders          int
	Documents        int
}
