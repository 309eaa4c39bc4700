package galaxy

import (
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/spacers/spacers/internal/core/ecs"
	"github.com/spacers/spacers/internal/core/event"
	"github.com/spacers/spacers/internal/spatial"
)

// World is the capability the navigation and seeding layers depend on.
// Galaxy is the production implementation.
type World interface {
	Spawn(spec Spec, at Attachment) (Handle, error)
	Get(h Handle) (Entity, bool)
	Attachment(h Handle) (Attachment, bool)
	Children(h Handle) []Handle
	Len() int
}

var _ World = (*Galaxy)(nil)

// Galaxy owns every entity, the spatial index over root-anchored entities
// and the parent/child relation between the rest.
// Not safe for concurrent use.
type Galaxy struct {
	objects *ecs.Store[Entity]
	spatial *spatial.Index
	bus     *event.Bus
	log     *zap.Logger
}

// New creates an empty galaxy. A nil logger discards output.
func New(log *zap.Logger) *Galaxy {
	if log == nil {
		log = zap.NewNop()
	}
	return &Galaxy{
		objects: ecs.NewStore[Entity](),
		spatial: spatial.NewIndex(),
		log:     log,
	}
}

// SetBus makes every subsequent spawn emit event.EntitySpawned on b.
func (g *Galaxy) SetBus(b *event.Bus) {
	g.bus = b
}

// Get returns a snapshot of the entity behind h. Mutating the snapshot does
// not affect the galaxy.
func (g *Galaxy) Get(h Handle) (Entity, bool) {
	e, ok := g.objects.Get(h)
	if !ok {
		return Entity{}, false
	}
	return snapshot(e), true
}

// Attachment returns h's attachment without copying the rest of the entity.
func (g *Galaxy) Attachment(h Handle) (Attachment, bool) {
	e, ok := g.objects.Get(h)
	if !ok {
		return nil, false
	}
	return e.Attachment, true
}

// Name returns h's name, or "" when h does not resolve.
func (g *Galaxy) Name(h Handle) string {
	if e, ok := g.objects.Get(h); ok {
		return e.Name
	}
	return ""
}

// Len returns the total entity count.
func (g *Galaxy) Len() int {
	return g.objects.Len()
}

// RootCount returns the number of root-anchored entities.
func (g *Galaxy) RootCount() int {
	return g.spatial.Len()
}

// Roots returns every root-anchored entity in spawn order.
func (g *Galaxy) Roots() []Handle {
	roots := make([]Handle, 0, g.spatial.Len())
	g.spatial.Each(func(id ecs.EntityID, _ spatial.Point) bool {
		roots = append(roots, id)
		return true
	})
	return roots
}

// NearestRoots returns up to k root-anchored entities nearest to p.
func (g *Galaxy) NearestRoots(p Position, k int) []spatial.Hit {
	return g.spatial.Nearest(p, k)
}

// RootsWithin returns the root-anchored entities inside [min, max].
func (g *Galaxy) RootsWithin(min, max Position) []Handle {
	return g.spatial.Within(min, max)
}

// RootsInRadius returns the root-anchored entities within r of p.
func (g *Galaxy) RootsInRadius(p Position, r float64) []spatial.Hit {
	return g.spatial.Radius(p, r)
}

func snapshot(e *Entity) Entity {
	out := *e
	out.Children = maps.Clone(e.Children)
	if out.Children == nil {
		out.Children = map[Handle]Relation{}
	}
	if e.Maneuver != nil {
		m := *e.Maneuver
		out.Maneuver = &m
	}
	if s, ok := e.Kind.(Structure); ok {
		out.Kind = Structure{Components: slices.Clone(s.Components)}
	}
	return out
}
