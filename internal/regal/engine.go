package regal

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
)

// Engine owns the state of one build: the source table, the instance cache
// and the cycle guard. Documents rendered against the same engine share
// instances, so a component used by several documents is read and rendered
// once.
//
// GetInstance, GetInstanceByID and Stats can be used by multiple goroutines.
// Renders are serialized.
type Engine struct {
	fsys fs.FS
	lang string

	mu        sync.Mutex
	sources   map[string]*TemplateSource // by file path
	instances map[Identity]*TemplateInstance
	stats     Stats

	renderMu   sync.Mutex
	inProgress map[Identity]bool
	stack      []string // template paths of the renders in progress
}

// Option configures an Engine.
type Option func(*Engine)

// WithLang sets the lang attribute of assembled documents.
func WithLang(lang string) Option {
	return func(e *Engine) {
		if lang != "" {
			e.lang = lang
		}
	}
}

// NewEngine returns an engine reading templates from fsys.
func NewEngine(fsys fs.FS, opts ...Option) *Engine {
	e := &Engine{
		fsys:       fsys,
		lang:       DefaultLang,
		sources:    map[string]*TemplateSource{},
		instances:  map[Identity]*TemplateInstance{},
		inProgress: map[Identity]bool{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetInstance returns the instance for templatePath with props, creating it
// on first use. It returns nil without an error when templatePath is empty.
// A template that cannot be read is an error wrapping ErrSourceUnreadable.
func (e *Engine) GetInstance(ctx context.Context, templatePath string, props Properties) (*TemplateInstance, error) {
	templatePath = strings.TrimSpace(templatePath)
	if templatePath == "" {
		return nil, nil
	}
	if len(props) == 0 {
		props = nil
	}

	id := IdentityOf(templatePath, props)

	e.mu.Lock()
	defer e.mu.Unlock()

	if inst, ok := e.instances[id]; ok {
		return inst, nil
	}

	src, err := e.source(ctx, templatePath)
	if err != nil {
		return nil, err
	}

	inst := &TemplateInstance{
		ID:         id,
		Token:      id.Token(),
		Source:     src,
		Properties: props,
	}
	e.instances[id] = inst
	e.stats.InstancesCreated++

	return inst, nil
}

// GetInstanceByID returns a previously created instance, or nil.
func (e *Engine) GetInstanceByID(id Identity) *TemplateInstance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.instances[id]
}

// Source returns the parsed source for templatePath, loading it on first use.
func (e *Engine) Source(ctx context.Context, templatePath string) (*TemplateSource, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source(ctx, strings.TrimSpace(templatePath))
}

// source must be called with e.mu held.
func (e *Engine) source(ctx context.Context, templatePath string) (*TemplateSource, error) {
	filePath, err := ResolveTemplatePath(templatePath)
	if err != nil {
		return nil, err
	}
	if src, ok := e.sources[filePath]; ok {
		return src, nil
	}

	src, err := LoadSource(e.fsys, templatePath)
	if err != nil {
		return nil, err
	}
	e.sources[filePath] = src
	e.stats.SourcesLoaded++

	logger(ctx).DebugContext(ctx, "loaded template source",
		slog.String("template", templatePath),
		slog.String("file", src.FilePath))

	return src, nil
}

// Stats returns a snapshot of the work done so far.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Render renders inst and everything it references. Rendering an instance
// a second time is a no-op returning the same dependencies.
func (e *Engine) Render(ctx context.Context, inst *TemplateInstance) ([]Identity, error) {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()
	return e.render(ctx, inst)
}

// RenderDocument renders the template at documentPath, with no properties,
// as a complete HTML document.
func (e *Engine) RenderDocument(ctx context.Context, documentPath string) (doc *Document, err error) {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	ctx, span := startSpan(ctx, "regal.RenderDocument", attribute.String("regal.document", documentPath))
	defer func() { endSpan(span, err) }()

	inst, err := e.GetInstance(ctx, documentPath, nil)
	if err != nil {
		return nil, renderErr(documentPath, nil, err)
	}
	if inst == nil {
		return nil, renderErr(documentPath, nil, fmt.Errorf("%w: empty document path", ErrUnresolvableReference))
	}

	deps, err := e.render(ctx, inst)
	if err != nil {
		return nil, err
	}

	doc = &Document{
		Path:         documentPath,
		Root:         inst,
		Dependencies: deps,
		HTML:         AssembleDocument(inst, deps, e.GetInstanceByID, e.lang),
	}

	e.mu.Lock()
	e.stats.Documents++
	e.mu.Unlock()

	logger(ctx).DebugContext(ctx, "assembled document",
		slog.String("document", documentPath),
		slog.Int("dependencies", len(deps)))

	return doc, nil
}
