package galaxy

import (
	"fmt"

	"github.com/spacers/spacers/internal/core/ecs"
	"github.com/spacers/spacers/internal/spatial"
)

// Handle refers to an entity slot in a Galaxy. The zero Handle never
// resolves.
type Handle = ecs.EntityID

// Position is a universe-absolute 2-D coordinate.
type Position = spatial.Point

// Mass in arbitrary game units.
type Mass int64

// Distance in metres.
type Distance uint64

// Relation describes how a child is attached to its parent. New relation
// kinds implement this interface; existing ones never change shape.
type Relation interface {
	isRelation()
	String() string
}

// Orbit places a child at a fixed altitude above its parent.
type Orbit struct {
	Altitude uint64
}

func (Orbit) isRelation() {}

func (o Orbit) String() string { return fmt.Sprintf("orbit(%d)", o.Altitude) }

// Attachment is exactly one of RootAnchor or OrbitsEntity.
type Attachment interface {
	isAttachment()
}

// RootAnchor pins an entity at a universe-absolute position.
type RootAnchor struct {
	Position Position
}

// OrbitsEntity attaches an entity to a parent entity.
type OrbitsEntity struct {
	Parent   Handle
	Relation Relation
}

func (RootAnchor) isAttachment()   {}
func (OrbitsEntity) isAttachment() {}

// AtPosition is shorthand for a RootAnchor attachment.
func AtPosition(x, y float32) RootAnchor {
	return RootAnchor{Position: Position{X: x, Y: y}}
}

// InOrbit is shorthand for an OrbitsEntity attachment with an Orbit relation.
func InOrbit(parent Handle, altitude uint64) OrbitsEntity {
	return OrbitsEntity{Parent: parent, Relation: Orbit{Altitude: altitude}}
}

// Composition is the fractional makeup of a body or field.
type Composition struct {
	Hydrogen float32
	Helium   float32
	Rock     float32
	Ice      float32
	Metals   float32
}

// DefaultComposition is pure rock.
func DefaultComposition() Composition {
	return Composition{Rock: 1}
}

// Kind is exactly one of Body, Field or Structure.
type Kind interface {
	isKind()
	KindName() string
}

// Body is a solid or gaseous sphere: stars, planets, moons.
type Body struct {
	Composition Composition
	Radius      Distance
}

// Field is diffuse matter: nebulae, accretion disks, asteroid belts.
type Field struct {
	Composition Composition
	Morphology  Morphology
}

// Structure is anything built: ships, stations.
type Structure struct {
	Components []Component
}

func (Body) isKind()      {}
func (Field) isKind()     {}
func (Structure) isKind() {}

func (Body) KindName() string      { return "body" }
func (Field) KindName() string     { return "field" }
func (Structure) KindName() string { return "structure" }

// Morphology is the shape of a Field.
type Morphology interface {
	isMorphology()
}

// Cloud extends Radius from the field's own center of mass.
type Cloud struct{ Radius Distance }

// Disk extends Radius from the parent's center of mass.
type Disk struct{ Radius Distance }

// Belt spans Inner..Outer from the parent's center of mass.
type Belt struct{ Inner, Outer Distance }

func (Cloud) isMorphology() {}
func (Disk) isMorphology()  {}
func (Belt) isMorphology()  {}

// ComponentKind enumerates structure components.
type ComponentKind uint8

const (
	Reactor ComponentKind = iota
	Cargo
	Thruster
	Drill
	componentKindCount
)

var componentKindNames = [componentKindCount]string{"reactor", "cargo", "thruster", "drill"}

func (k ComponentKind) String() string {
	if k < componentKindCount {
		return componentKindNames[k]
	}
	return fmt.Sprintf("component(%d)", uint8(k))
}

// ParseComponentKind maps a lowercase component name to its kind.
func ParseComponentKind(s string) (ComponentKind, bool) {
	for i, n := range componentKindNames {
		if n == s {
			return ComponentKind(i), true
		}
	}
	return 0, false
}

// Component is one installed part of a Structure.
type Component struct {
	Kind ComponentKind
}

// ComponentsOf returns the positions in Components of every component of
// kind k, in declaration order.
func (s Structure) ComponentsOf(k ComponentKind) []int {
	var idx []int
	for i, c := range s.Components {
		if c.Kind == k {
			idx = append(idx, i)
		}
	}
	return idx
}

// Reactors returns the reactor components in declaration order.
func (s Structure) Reactors() []Component {
	idx := s.ComponentsOf(Reactor)
	out := make([]Component, len(idx))
	for i, j := range idx {
		out[i] = s.Components[j]
	}
	return out
}

// Maneuver is the optional propulsion capability of an entity.
type Maneuver struct {
	DeltaV float64
}

// Entity is everything the Galaxy stores about one object.
type Entity struct {
	Attachment Attachment
	// Children maps each dependent to the relation describing its
	// attachment. Always non-nil for stored entities.
	Children map[Handle]Relation
	Mass     Mass
	Name     string
	Kind     Kind
	Maneuver *Maneuver
}

// RootAnchored reports whether e sits at a universe-absolute position.
func (e *Entity) RootAnchored() bool {
	_, ok := e.Attachment.(RootAnchor)
	return ok
}

// ParentHandle returns the handle e orbits, if any.
func (e *Entity) ParentHandle() (Handle, bool) {
	if o, ok := e.Attachment.(OrbitsEntity); ok {
		return o.Parent, true
	}
	return 0, false
}
