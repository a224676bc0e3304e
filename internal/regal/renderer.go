package regal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/net/html"
)

// MaxNestingDepth bounds the reference chain. Templates that embed
// themselves with ever-changing properties get a new identity at every
// level, which the identity-based cycle guard cannot see.
const MaxNestingDepth = 64

// render is the recursive composer. It must be called with e.renderMu held.
//
// References are resolved deepest first, so a reference nested inside
// another one is already replaced by its rendered markup when the outer
// reference captures its children as the "in" property.
func (e *Engine) render(ctx context.Context, inst *TemplateInstance) (deps []Identity, err error) {
	if inst.rendered {
		return inst.deps, nil
	}

	templatePath := inst.Source.TemplatePath
	if e.inProgress[inst.ID] {
		chain := append(append([]string(nil), e.stack...), templatePath)
		return nil, renderErr(templatePath, chain, ErrReferenceCycle)
	}
	if len(e.stack) >= MaxNestingDepth {
		return nil, renderErr(templatePath, e.stack,
			fmt.Errorf("%w: nesting deeper than %d", ErrReferenceCycle, MaxNestingDepth))
	}

	e.inProgress[inst.ID] = true
	e.stack = append(e.stack, templatePath)
	defer func() {
		delete(e.inProgress, inst.ID)
		e.stack = e.stack[:len(e.stack)-1]
	}()

	ctx, span := startSpan(ctx, "regal.render",
		attribute.String("regal.template", templatePath),
		attribute.String("regal.instance", inst.Token))
	defer func() { endSpan(span, err) }()

	t, err := parseTree(Expand(inst, inst.Source.Markup))
	if err != nil {
		return nil, renderErr(templatePath, e.stack, fmt.Errorf("parse markup: %w", err))
	}

	var acc dependencySet
	for _, ref := range t.findByTag(ReferenceTag) {
		child, err := e.resolveReference(ctx, ref)
		if err != nil {
			return nil, renderErr(templatePath, e.stack, err)
		}

		childDeps, err := e.render(ctx, child)
		if err != nil {
			return nil, err
		}
		acc.add(childDeps...)
		acc.add(child.ID)

		if err := replaceNode(ref, child.markup); err != nil {
			return nil, renderErr(templatePath, e.stack,
				fmt.Errorf("splice %s: %w", child.Source.TemplatePath, err))
		}
	}

	markup, err := t.String()
	if err != nil {
		return nil, renderErr(templatePath, e.stack, fmt.Errorf("serialize markup: %w", err))
	}

	inst.markup = markup
	inst.style = Expand(inst, inst.Source.Style)
	inst.deps = acc.list()
	inst.rendered = true

	e.mu.Lock()
	e.stats.Renders++
	e.mu.Unlock()

	logger(ctx).DebugContext(ctx, "rendered instance",
		slog.String("template", templatePath),
		slog.String("instance", inst.Token),
		slog.Int("dependencies", len(inst.deps)))

	return inst.deps, nil
}

// resolveReference returns the instance a reference element stands for.
func (e *Engine) resolveReference(ctx context.Context, ref *html.Node) (*TemplateInstance, error) {
	templatePath := strings.TrimSpace(getAttr(ref, ReferencePathAttr))

	props, err := referenceProperties(ref)
	if err != nil {
		return nil, err
	}

	inst, err := e.GetInstance(ctx, templatePath, props)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("%w: <%s> without %s", ErrUnresolvableReference, ReferenceTag, ReferencePathAttr)
	}
	return inst, nil
}

// referenceProperties collects the properties of a reference element: its
// serialized content under "in", and every :name attribute. An attribute
// without a value is the flag true.
func referenceProperties(ref *html.Node) (Properties, error) {
	props := Properties{}

	if hasContent(ref) {
		inner, err := renderChildren(ref, true)
		if err != nil {
			return nil, fmt.Errorf("serialize %s content: %w", ReferenceTag, err)
		}
		props[InnerProperty] = Text(inner)
	}

	for _, a := range ref.Attr {
		if len(a.Key) <= len(PropertySigil) || !strings.HasPrefix(a.Key, PropertySigil) {
			continue
		}
		name := strings.TrimPrefix(a.Key, PropertySigil)
		if a.Val == "" {
			props[name] = Flag()
		} else {
			props[name] = Text(strings.TrimSpace(a.Val))
		}
	}

	if len(props) == 0 {
		return nil, nil
	}
	return props, nil
}

// dependencySet keeps identities unique, in order of first addition.
type dependencySet struct {
	seen  map[Identity]bool
	order []Identity
}

func (s *dependencySet) add(ids ...Identity) {
	if s.seen == nil {
		s.seen = map[Identity]bool{}
	}
	for _, id := range ids {
		if s.seen[id] {
			continue
		}
		s.seen[id] = true
		s.order = append(s.order, id)
	}
}

func (s *dependencySet) list() []Identity {
	if s.order == nil {
		return []Identity{}
	}
	return s.order
}
