package galaxy

import (
	"fmt"
	"reflect"
	"slices"
)

// Parent returns the entity h orbits. False when h is root-anchored or does
// not resolve.
func (g *Galaxy) Parent(h Handle) (Handle, bool) {
	e, ok := g.objects.Get(h)
	if !ok {
		return 0, false
	}
	return e.ParentHandle()
}

// Children returns h's direct dependents in ascending handle order.
func (g *Galaxy) Children(h Handle) []Handle {
	e, ok := g.objects.Get(h)
	if !ok || len(e.Children) == 0 {
		return nil
	}
	out := make([]Handle, 0, len(e.Children))
	for c := range e.Children {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// ChildRelation returns the relation under which child is attached to parent.
func (g *Galaxy) ChildRelation(parent, child Handle) (Relation, bool) {
	e, ok := g.objects.Get(parent)
	if !ok {
		return nil, false
	}
	r, ok := e.Children[child]
	return r, ok
}

// Ancestors returns the parent walk from h: h's parent first, the
// root-anchored ancestor last. Empty for a root-anchored h.
func (g *Galaxy) Ancestors(h Handle) ([]Handle, error) {
	e, ok := g.objects.Get(h)
	if !ok {
		return nil, fmt.Errorf("ancestors of %d: %w", h, ErrNotFound)
	}
	var out []Handle
	for steps := 0; ; steps++ {
		parent, orbiting := e.ParentHandle()
		if !orbiting {
			return out, nil
		}
		if steps >= g.objects.Len() {
			return nil, fmt.Errorf("ancestors of %d: %w", h, ErrCycle)
		}
		if e, ok = g.objects.Get(parent); !ok {
			return nil, fmt.Errorf("ancestors of %d: parent %d: %w", h, parent, ErrNotFound)
		}
		out = append(out, parent)
	}
}

// Depth returns the number of parent hops from h to its root anchor.
func (g *Galaxy) Depth(h Handle) (int, error) {
	anc, err := g.Ancestors(h)
	if err != nil {
		return 0, err
	}
	return len(anc), nil
}

// Root returns the root-anchored ancestor of h (h itself when root-anchored)
// and its position.
func (g *Galaxy) Root(h Handle) (Handle, Position, error) {
	anc, err := g.Ancestors(h)
	if err != nil {
		return 0, Position{}, err
	}
	root := h
	if len(anc) > 0 {
		root = anc[len(anc)-1]
	}
	e, _ := g.objects.Get(root)
	return root, e.Attachment.(RootAnchor).Position, nil
}

// Walk visits every entity depth-first, pre-order: roots in spawn order,
// children in handle order. Returning false from fn skips that entity's
// subtree.
func (g *Galaxy) Walk(fn func(h Handle, e Entity, depth int) bool) {
	var visit func(h Handle, depth int)
	visit = func(h Handle, depth int) {
		e, ok := g.Get(h)
		if !ok || !fn(h, e, depth) {
			return
		}
		for _, c := range g.Children(h) {
			visit(c, depth+1)
		}
	}
	for _, r := range g.Roots() {
		visit(r, 0)
	}
}

// Check verifies the structural invariants and returns every violation:
// each entity has exactly one attachment; root-anchored entities are indexed
// at their position and nothing else is; every orbit is mirrored by exactly
// one children entry on its parent; every parent walk ends at a root anchor.
func (g *Galaxy) Check() []error {
	var errs []error
	roots := 0
	g.objects.Each(func(h Handle, e *Entity) bool {
		switch a := e.Attachment.(type) {
		case RootAnchor:
			roots++
			if p, ok := g.spatial.Position(h); !ok {
				errs = append(errs, fmt.Errorf("%d: root-anchored but not indexed", h))
			} else if p != a.Position {
				errs = append(errs, fmt.Errorf("%d: indexed at %v, anchored at %v", h, p, a.Position))
			}
		case OrbitsEntity:
			if g.spatial.Contains(h) {
				errs = append(errs, fmt.Errorf("%d: orbiting but indexed", h))
			}
			r, ok := g.ChildRelation(a.Parent, h)
			if !ok {
				errs = append(errs, fmt.Errorf("%d: missing from children of parent %d", h, a.Parent))
			} else if !reflect.DeepEqual(r, a.Relation) {
				errs = append(errs, fmt.Errorf("%d: parent %d records %v, attachment says %v", h, a.Parent, r, a.Relation))
			}
			if _, err := g.Ancestors(h); err != nil {
				errs = append(errs, err)
			}
		default:
			errs = append(errs, fmt.Errorf("%d: no attachment", h))
		}
		for c := range e.Children {
			if p, ok := g.Parent(c); !ok || p != h {
				errs = append(errs, fmt.Errorf("%d: lists child %d which does not orbit it", h, c))
			}
		}
		return true
	})
	if roots != g.spatial.Len() {
		errs = append(errs, fmt.Errorf("index holds %d entries, %d entities are root-anchored", g.spatial.Len(), roots))
	}
	return errs
}
