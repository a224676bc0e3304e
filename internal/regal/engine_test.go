package regal

import (
	"context"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFS counts file opens per name.
type countingFS struct {
	fs.FS
	mu    sync.Mutex
	opens map[string]int
}

func newCountingFS(files map[string]string) *countingFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return &countingFS{FS: m, opens: map[string]int{}}
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.mu.Lock()
	c.opens[name]++
	c.mu.Unlock()
	return c.FS.Open(name)
}

func (c *countingFS) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens[name]
}

func TestGetInstance(t *testing.T) {
	e := NewEngine(newCountingFS(map[string]string{
		"card.html": `<template><h2>{{ title }}</h2></template>`,
	}))
	ctx := context.Background()

	t.Run("empty path yields nothing", func(t *testing.T) {
		inst, err := e.GetInstance(ctx, "  ", nil)
		require.NoError(t, err)
		assert.Nil(t, inst)
	})

	t.Run("equal identity yields the same object", func(t *testing.T) {
		a, err := e.GetInstance(ctx, "card", Properties{"title": Text("Hi")})
		require.NoError(t, err)
		b, err := e.GetInstance(ctx, "card.html", Properties{"title": Text(" Hi ")})
		require.NoError(t, err)
		assert.Same(t, a, b)
		assert.Same(t, a, e.GetInstanceByID(a.ID))
	})

	t.Run("different properties yield different objects", func(t *testing.T) {
		a, err := e.GetInstance(ctx, "card", Properties{"title": Text("Hi")})
		require.NoError(t, err)
		b, err := e.GetInstance(ctx, "card", Properties{"title": Text("Ho")})
		require.NoError(t, err)
		assert.NotSame(t, a, b)
		assert.Same(t, a.Source, b.Source)
		assert.NotEqual(t, a.Token, b.Token)
	})

	t.Run("missing template", func(t *testing.T) {
		_, err := e.GetInstance(ctx, "missing", nil)
		require.ErrorIs(t, err, ErrSourceUnreadable)
	})

	t.Run("unknown identity", func(t *testing.T) {
		assert.Nil(t, e.GetInstanceByID(Identity(42)))
	})
}

func TestGetInstance_Concurrent(t *testing.T) {
	fsys := newCountingFS(map[string]string{
		"card.html": `<template><h2>{{ title }}</h2></template>`,
	})
	e := NewEngine(fsys)

	const workers = 16
	results := make([]*TemplateInstance, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inst, err := e.GetInstance(context.Background(), "card", Properties{"title": Text("Hi")})
			assert.NoError(t, err)
			results[i] = inst
		}(i)
	}
	wg.Wait()

	for _, inst := range results {
		assert.Same(t, results[0], inst)
	}
	assert.Equal(t, 1, fsys.count("card.html"))
	assert.Equal(t, 1, e.Stats().InstancesCreated)
}

func TestRenderDocument_Card(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"index.html": {Data: []byte(`<template><instance regal:path="card" :title="Hi"></instance></template>`)},
		"card.html": {Data: []byte(`<template><div class="{{ _scope_ }}"><h2>{{ title }}</h2></div></template>
<style>.{{ _scope_ }} h2 { color: red; }</style>`)},
	})

	doc, err := e.RenderDocument(context.Background(), "index")
	require.NoError(t, err)

	card, err := e.GetInstance(context.Background(), "card", Properties{"title": Text("Hi")})
	require.NoError(t, err)
	scope := card.ID.Scope()

	want := "<!DOCTYPE html>\n" +
		"<html lang=\"en\">\n" +
		"<head>\n" +
		"<style>." + scope + " h2{color: red;}</style>\n" +
		"</head>\n" +
		"<div class=\"" + scope + "\"><h2>Hi</h2></div>\n" +
		"</html>"
	assert.Equal(t, want, doc.HTML)

	if diff := cmp.Diff([]Identity{card.ID}, doc.Dependencies); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
	assert.Same(t, card, e.GetInstanceByID(doc.Dependencies[0]))
}

func TestRenderDocument_InnerContent(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"index.html": {Data: []byte(`<template>
<instance regal:path="panel" :open>
	<instance regal:path="badge" :label="new"/>
	<p>Body</p>
</instance>
</template>`)},
		"panel.html": {Data: []byte(`<template><section data-open="{{ open }}">{{ in }}</section></template>`)},
		"badge.html": {Data: []byte(`<template><span>{{ label }}</span></template>`)},
	})

	doc, err := e.RenderDocument(context.Background(), "index")
	require.NoError(t, err)

	// The badge is rendered before the panel captures its content.
	assert.Contains(t, doc.HTML, `<section data-open="true"><span>new</span>`)
	assert.Contains(t, doc.HTML, "<p>Body</p>\n</section>")
	assert.NotContains(t, doc.HTML, "instance")
	assert.Len(t, doc.Dependencies, 2)
}

func TestRenderDocument_SharedAcrossDocuments(t *testing.T) {
	fsys := newCountingFS(map[string]string{
		"a.html":    `<template><instance regal:path="card" :title="Hi"></instance></template>`,
		"b.html":    `<template><instance regal:path="card" :title="Hi"></instance><instance regal:path="card" :title="Hi"></instance></template>`,
		"card.html": `<template><h2>{{ title }}</h2></template><style>h2{margin:0}</style>`,
	})
	e := NewEngine(fsys)
	ctx := context.Background()

	docA, err := e.RenderDocument(ctx, "a")
	require.NoError(t, err)
	docB, err := e.RenderDocument(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, 1, fsys.count("card.html"))
	assert.Equal(t, Stats{SourcesLoaded: 3, InstancesCreated: 3, Renders: 3, Documents: 2}, e.Stats())

	// Duplicate-free dependencies, and the style appears once
	assert.Equal(t, docA.Dependencies, docB.Dependencies)
	assert.Equal(t, 1, strings.Count(docB.HTML, "h2{margin:0}"))
	assert.Equal(t, 2, strings.Count(docB.HTML, "<h2>Hi</h2>"))
}

func TestRender_Idempotent(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"page.html": {Data: []byte(`<template><instance regal:path="card"></instance></template>`)},
		"card.html": {Data: []byte(`<template><b>card</b></template>`)},
	})
	ctx := context.Background()

	inst, err := e.GetInstance(ctx, "page", nil)
	require.NoError(t, err)
	assert.False(t, inst.Rendered())

	first, err := e.Render(ctx, inst)
	require.NoError(t, err)
	markup := inst.Markup()

	second, err := e.Render(ctx, inst)
	require.NoError(t, err)

	assert.True(t, inst.Rendered())
	assert.Equal(t, first, second)
	assert.Equal(t, markup, inst.Markup())
	assert.Equal(t, "<b>card</b>", markup)
	assert.Equal(t, 2, e.Stats().Renders)
}

func TestRenderDocument_Cycle(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"a.html": {Data: []byte(`<template><instance regal:path="b"></instance></template>`)},
		"b.html": {Data: []byte(`<template><instance regal:path="a"></instance></template>`)},
		"self.html": {Data: []byte(`<template><instance regal:path="self"></instance></template>`)},
	})
	ctx := context.Background()

	_, err := e.RenderDocument(ctx, "a")
	require.ErrorIs(t, err, ErrReferenceCycle)
	assert.NotErrorIs(t, err, ErrUnresolvableReference)
	assert.Contains(t, err.Error(), "a -> b -> a")

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, []string{"a", "b", "a"}, re.Chain)

	// The failed instances are left unrendered and can fail again
	_, err = e.RenderDocument(ctx, "a")
	require.ErrorIs(t, err, ErrReferenceCycle)

	_, err = e.RenderDocument(ctx, "self")
	require.ErrorIs(t, err, ErrReferenceCycle)
	assert.Contains(t, err.Error(), "self -> self")
}

func TestRenderDocument_UnboundedNesting(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"grow.html": {Data: []byte(`<template><instance regal:path="grow" :n="{{ n }}x"></instance></template>`)},
	})

	_, err := e.RenderDocument(context.Background(), "grow")
	require.ErrorIs(t, err, ErrReferenceCycle)
	assert.Contains(t, err.Error(), "nesting deeper than")
}

func TestRenderDocument_Failures(t *testing.T) {
	tests := []struct {
		name    string
		files   fstest.MapFS
		doc     string
		wantErr error
	}{
		{
			name:    "missing document",
			files:   fstest.MapFS{},
			doc:     "index",
			wantErr: ErrSourceUnreadable,
		},
		{
			name:    "empty document path",
			files:   fstest.MapFS{},
			doc:     "",
			wantErr: ErrUnresolvableReference,
		},
		{
			name: "missing component",
			files: fstest.MapFS{
				"index.html": {Data: []byte(`<template><instance regal:path="ghost"></instance></template>`)},
			},
			doc:     "index",
			wantErr: ErrSourceUnreadable,
		},
		{
			name: "reference without path",
			files: fstest.MapFS{
				"index.html": {Data: []byte(`<template><instance :title="x"></instance></template>`)},
			},
			doc:     "index",
			wantErr: ErrUnresolvableReference,
		},
		{
			name: "reference with blank path",
			files: fstest.MapFS{
				"index.html": {Data: []byte(`<template><instance regal:path="  "></instance></template>`)},
			},
			doc:     "index",
			wantErr: ErrUnresolvableReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.files)
			doc, err := e.RenderDocument(context.Background(), tt.doc)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, doc)
			assert.Zero(t, e.Stats().Documents)
		})
	}
}

func TestRenderDocument_FailureNamesInnermostTemplate(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"index.html": {Data: []byte(`<template><instance regal:path="outer"></instance></template>`)},
		"outer.html": {Data: []byte(`<template><instance regal:path="ghost"></instance></template>`)},
	})

	_, err := e.RenderDocument(context.Background(), "index")
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "outer", re.Template)
	assert.Equal(t, []string{"index", "outer"}, re.Chain)
}

func TestWithLang(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"index.html": {Data: []byte(`<template><p>x</p></template>`)},
	}, WithLang("nl"))

	doc, err := e.RenderDocument(context.Background(), "index")
	require.NoError(t, err)
	assert.Contains(t, doc.HTML, `<html lang="nl">`)
}

func TestReferenceProperties(t *testing.T) {
	tr, err := parseTree(`<instance regal:path="x" :title=" Hi " :open class="ignored" :myTitle="folded"> <b>in</b> </instance>`)
	require.NoError(t, err)

	props, err := referenceProperties(tr.findByTag(ReferenceTag)[0])
	require.NoError(t, err)

	assert.Equal(t, Properties{
		"title":   Text("Hi"),
		"open":    Flag(),
		"mytitle": Text("folded"),
		"in":      Text("<b>in</b>"),
	}, props)
}

func TestReferenceProperties_None(t *testing.T) {
	tr, err := parseTree(`<instance regal:path="x"> </instance>`)
	require.NoError(t, err)

	props, err := referenceProperties(tr.findByTag(ReferenceTag)[0])
	require.NoError(t, err)
	assert.Nil(t, props)
}
