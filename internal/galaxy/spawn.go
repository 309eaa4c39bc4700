package galaxy

import (
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/spacers/spacers/internal/core/event"
)

// Defaults applied by Spawn to unset Spec fields.
const (
	DefaultMass Mass   = 1
	DefaultName string = "Unnamed"
)

// DefaultKind is a unit-radius rock body.
func DefaultKind() Kind {
	return Body{Composition: DefaultComposition(), Radius: 1}
}

// Spec declares an entity and, optionally, a tree of children to create with
// it. Zero Mass, empty Name and nil Kind take the package defaults.
type Spec struct {
	Name     string
	Mass     Mass
	Kind     Kind
	Maneuver *Maneuver
	Children []ChildSpec
}

// ChildSpec is a nested spec together with how it attaches to its parent.
type ChildSpec struct {
	Spec     Spec
	Relation Relation
}

// WithChild returns a copy of s with child appended under rel.
func (s Spec) WithChild(child Spec, rel Relation) Spec {
	s.Children = append(slices.Clip(s.Children), ChildSpec{Spec: child, Relation: rel})
	return s
}

func (s Spec) entity(at Attachment) Entity {
	e := Entity{
		Attachment: at,
		Children:   make(map[Handle]Relation),
		Mass:       s.Mass,
		Name:       s.Name,
		Kind:       s.Kind,
	}
	if e.Mass == 0 {
		e.Mass = DefaultMass
	}
	if e.Name == "" {
		e.Name = DefaultName
	}
	if e.Kind == nil {
		e.Kind = DefaultKind()
	}
	if s.Maneuver != nil {
		m := *s.Maneuver
		e.Maneuver = &m
	}
	return e
}

// Spawn creates the entity declared by spec at the given attachment, then
// every nested child attached to the entity that declares it. It returns
// the outermost handle; children are reachable through Children. The whole
// request is validated first: on error nothing was created. Root anchors
// must have finite coordinates.
func (g *Galaxy) Spawn(spec Spec, at Attachment) (Handle, error) {
	parentDepth, err := g.check(spec, at)
	if err != nil {
		g.log.Warn("spawn rejected", zap.String("name", spec.Name), zap.Error(err))
		return 0, err
	}
	return g.spawn(spec, at, parentDepth), nil
}

// check validates the request and returns the parent's depth (-1 when
// root-anchored).
func (g *Galaxy) check(spec Spec, at Attachment) (int, error) {
	parentDepth := -1
	switch a := at.(type) {
	case RootAnchor:
		if !finite(a.Position) {
			return 0, &SpawnError{Name: spec.Name, Err: ErrInvalidAttachment}
		}
	case OrbitsEntity:
		if a.Relation == nil {
			return 0, &SpawnError{Name: spec.Name, Parent: a.Parent, Err: ErrInvalidRelation}
		}
		if !g.objects.Has(a.Parent) {
			return 0, &SpawnError{Name: spec.Name, Parent: a.Parent, Err: ErrInvalidParent}
		}
		d, err := g.Depth(a.Parent)
		if err != nil {
			return 0, &SpawnError{Name: spec.Name, Parent: a.Parent, Err: err}
		}
		parentDepth = d
	default:
		return 0, &SpawnError{Name: spec.Name, Err: ErrInvalidAttachment}
	}
	if err := checkChildren(spec); err != nil {
		return 0, err
	}
	return parentDepth, nil
}

func finite(p Position) bool {
	for _, c := range [2]float64{float64(p.X), float64(p.Y)} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func checkChildren(spec Spec) error {
	for _, c := range spec.Children {
		if c.Relation == nil {
			return &SpawnError{Name: c.Spec.Name, Err: ErrInvalidRelation}
		}
		if err := checkChildren(c.Spec); err != nil {
			return err
		}
	}
	return nil
}

// spawn assumes check passed. parentDepth is -1 for root-anchored spawns.
func (g *Galaxy) spawn(spec Spec, at Attachment, parentDepth int) Handle {
	h := g.objects.Insert(spec.entity(at))

	var parent Handle
	switch a := at.(type) {
	case RootAnchor:
		g.spatial.Insert(a.Position, h)
	case OrbitsEntity:
		parent = a.Parent
		p, _ := g.objects.Get(a.Parent)
		p.Children[h] = a.Relation
	}

	name := g.Name(h)
	event.Emit(g.bus, event.EntitySpawned{Handle: h, Parent: parent, Name: name, Depth: parentDepth + 1})
	g.log.Debug("entity spawned",
		zap.Uint64("handle", uint64(h)),
		zap.Uint64("parent", uint64(parent)),
		zap.String("name", name),
		zap.Int("children", len(spec.Children)),
	)

	for _, c := range spec.Children {
		g.spawn(c.Spec, OrbitsEntity{Parent: h, Relation: c.Relation}, parentDepth+1)
	}
	return h
}
