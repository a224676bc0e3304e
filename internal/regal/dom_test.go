package regal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTree_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "fragment",
			markup: `<p>a</p><instance regal:path="x"></instance>`,
			want:   `<p>a</p><instance regal:path="x"></instance>`,
		},
		{
			name:   "document level markup keeps head and body",
			markup: "<head><title>t</title></head><body><p>x</p></body>",
			want:   "<head><title>t</title></head><body><p>x</p></body>",
		},
		{
			name:   "text only",
			markup: "hello",
			want:   "hello",
		},
		{
			name:   "placeholders in attributes survive",
			markup: `<div class="{{ _scope_ }}">{{ in }}</div>`,
			want:   `<div class="{{ _scope_ }}">{{ in }}</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := parseTree(tt.markup)
			require.NoError(t, err)
			got, err := tr.String()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindByTag_DeepestFirst(t *testing.T) {
	tr, err := parseTree(`<instance regal:path="a"><div><instance regal:path="b"></instance></div></instance>` +
		`<instance regal:path="c"><instance regal:path="d"></instance></instance>`)
	require.NoError(t, err)

	var order []string
	for _, n := range tr.findByTag(ReferenceTag) {
		order = append(order, getAttr(n, ReferencePathAttr))
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, order)
}

func TestReplaceNode(t *testing.T) {
	tr, err := parseTree(`<ul><instance regal:path="items"></instance></ul>`)
	require.NoError(t, err)

	refs := tr.findByTag(ReferenceTag)
	require.Len(t, refs, 1)
	require.NoError(t, replaceNode(refs[0], "<li>a</li><li>b</li>"))

	got, err := tr.String()
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>a</li><li>b</li></ul>", got)
}

func TestReplaceNode_Empty(t *testing.T) {
	tr, err := parseTree(`<p>x<instance regal:path="nothing"></instance>y</p>`)
	require.NoError(t, err)

	require.NoError(t, replaceNode(tr.findByTag(ReferenceTag)[0], ""))

	got, err := tr.String()
	require.NoError(t, err)
	assert.Equal(t, "<p>xy</p>", got)
}

func TestHasContent(t *testing.T) {
	tests := []struct {
		markup string
		want   bool
	}{
		{markup: `<instance></instance>`, want: false},
		{markup: "<instance>  \n </instance>", want: false},
		{markup: `<instance><!-- note --></instance>`, want: false},
		{markup: `<instance>text</instance>`, want: true},
		{markup: `<instance> <b></b> </instance>`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.markup, func(t *testing.T) {
			tr, err := parseTree(tt.markup)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hasContent(tr.findByTag(ReferenceTag)[0]))
		})
	}
}

func TestRenderChildren_ContentOnly(t *testing.T) {
	tr, err := parseTree("<instance>\n  <!-- skipped -->\n  <b>bold</b> tail\n</instance>")
	require.NoError(t, err)

	got, err := renderChildren(tr.findByTag(ReferenceTag)[0], true)
	require.NoError(t, err)
	assert.Equal(t, "<b>bold</b> tail\n", got)
}

func TestCloseReferenceElements(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "self-closing reference",
			markup: `<instance regal:path="a"/><p>x</p>`,
			want:   `<instance regal:path="a"></instance><p>x</p>`,
		},
		{
			name:   "space before slash",
			markup: `<instance regal:path="a" :open />`,
			want:   `<instance regal:path="a" :open ></instance>`,
		},
		{
			name:   "other self-closing tags untouched",
			markup: `<br/><img src="x" />`,
			want:   `<br/><img src="x" />`,
		},
		{
			name:   "open and close untouched",
			markup: `<instance regal:path="a">in</instance>`,
			want:   `<instance regal:path="a">in</instance>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, closeReferenceElements(tt.markup))
		})
	}
}
