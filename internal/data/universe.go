package data

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spacers/spacers/internal/galaxy"
)

// ErrInvalidEntry marks a universe entry that cannot become a spawn spec.
var ErrInvalidEntry = errors.New("invalid universe entry")

// Universe is the declarative world definition loaded from universe.yaml.
type Universe struct {
	Player  string        `yaml:"player"`
	Objects []ObjectEntry `yaml:"objects"`
}

// ObjectEntry declares one object. Top-level entries need Position;
// entries under Children need Orbit.
type ObjectEntry struct {
	Name     string         `yaml:"name"`
	Mass     int64          `yaml:"mass"`
	Position []float32      `yaml:"position"` // [x, y]
	Orbit    *uint64        `yaml:"orbit"`    // altitude above the parent
	Kind     *KindEntry     `yaml:"kind"`
	Maneuver *ManeuverEntry `yaml:"maneuver"`
	Children []ObjectEntry  `yaml:"children"`
}

// KindEntry holds exactly one of Body, Field, Structure.
type KindEntry struct {
	Body      *BodyEntry      `yaml:"body"`
	Field     *FieldEntry     `yaml:"field"`
	Structure *StructureEntry `yaml:"structure"`
}

type CompositionEntry struct {
	Hydrogen float32 `yaml:"hydrogen"`
	Helium   float32 `yaml:"helium"`
	Rock     float32 `yaml:"rock"`
	Ice      float32 `yaml:"ice"`
	Metals   float32 `yaml:"metals"`
}

type BodyEntry struct {
	Radius      uint64            `yaml:"radius"`
	Composition *CompositionEntry `yaml:"composition"`
}

// FieldEntry: Morphology is "cloud" or "disk" (Radius) or "belt" (Inner, Outer).
type FieldEntry struct {
	Composition *CompositionEntry `yaml:"composition"`
	Morphology  string            `yaml:"morphology"`
	Radius      uint64            `yaml:"radius"`
	Inner       uint64            `yaml:"inner"`
	Outer       uint64            `yaml:"outer"`
}

type StructureEntry struct {
	Components []string `yaml:"components"`
}

type ManeuverEntry struct {
	DeltaV float64 `yaml:"delta_v"`
}

// LoadUniverse loads and validates a universe YAML file.
func LoadUniverse(path string) (*Universe, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	u, err := ParseUniverse(raw)
	if err != nil {
		return nil, fmt.Errorf("universe %s: %w", path, err)
	}
	return u, nil
}

// ParseUniverse decodes and validates universe YAML.
func ParseUniverse(raw []byte) (*Universe, error) {
	var u Universe
	if err := yaml.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &u, nil
}

// Validate checks every entry converts to a spec and that the player, if
// named, is declared.
func (u *Universe) Validate() error {
	for i := range u.Objects {
		if _, _, err := u.Objects[i].RootSpec(); err != nil {
			return fmt.Errorf("objects[%d]: %w", i, err)
		}
	}
	if u.Player != "" && !declares(u.Objects, u.Player) {
		return fmt.Errorf("%w: player %q not declared", ErrInvalidEntry, u.Player)
	}
	return nil
}

func declares(es []ObjectEntry, name string) bool {
	for i := range es {
		if es[i].Name == name || declares(es[i].Children, name) {
			return true
		}
	}
	return false
}

// RootSpec converts a top-level entry into a spec and its root anchor.
func (e *ObjectEntry) RootSpec() (galaxy.Spec, galaxy.RootAnchor, error) {
	if len(e.Position) != 2 {
		return galaxy.Spec{}, galaxy.RootAnchor{}, fmt.Errorf("%w: %q: position needs [x, y], got %d values", ErrInvalidEntry, e.Name, len(e.Position))
	}
	for _, c := range e.Position {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return galaxy.Spec{}, galaxy.RootAnchor{}, fmt.Errorf("%w: %q: position %v is not finite", ErrInvalidEntry, e.Name, e.Position)
		}
	}
	spec, err := e.Spec()
	if err != nil {
		return galaxy.Spec{}, galaxy.RootAnchor{}, err
	}
	return spec, galaxy.AtPosition(e.Position[0], e.Position[1]), nil
}

// Spec converts the entry and its children, ignoring the entry's own
// Position and Orbit.
func (e *ObjectEntry) Spec() (galaxy.Spec, error) {
	if e.Mass < 0 {
		return galaxy.Spec{}, fmt.Errorf("%w: %q: negative mass %d", ErrInvalidEntry, e.Name, e.Mass)
	}
	spec := galaxy.Spec{Name: e.Name, Mass: galaxy.Mass(e.Mass)}
	if e.Kind != nil {
		k, err := e.Kind.kind()
		if err != nil {
			return galaxy.Spec{}, fmt.Errorf("%q: %w", e.Name, err)
		}
		spec.Kind = k
	}
	if e.Maneuver != nil {
		spec.Maneuver = &galaxy.Maneuver{DeltaV: e.Maneuver.DeltaV}
	}
	for i := range e.Children {
		c := &e.Children[i]
		if c.Orbit == nil {
			return galaxy.Spec{}, fmt.Errorf("%w: %q: child %q has no orbit", ErrInvalidEntry, e.Name, c.Name)
		}
		if len(c.Position) != 0 {
			return galaxy.Spec{}, fmt.Errorf("%w: %q: child %q has a position", ErrInvalidEntry, e.Name, c.Name)
		}
		cs, err := c.Spec()
		if err != nil {
			return galaxy.Spec{}, err
		}
		spec = spec.WithChild(cs, galaxy.Orbit{Altitude: *c.Orbit})
	}
	return spec, nil
}

func (k *KindEntry) kind() (galaxy.Kind, error) {
	set := 0
	for _, p := range []bool{k.Body != nil, k.Field != nil, k.Structure != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: kind needs exactly one of body, field, structure; got %d", ErrInvalidEntry, set)
	}
	switch {
	case k.Body != nil:
		return galaxy.Body{Composition: k.Body.Composition.composition(), Radius: galaxy.Distance(k.Body.Radius)}, nil
	case k.Field != nil:
		m, err := k.Field.morphology()
		if err != nil {
			return nil, err
		}
		return galaxy.Field{Composition: k.Field.Composition.composition(), Morphology: m}, nil
	default:
		s := galaxy.Structure{Components: make([]galaxy.Component, 0, len(k.Structure.Components))}
		for _, name := range k.Structure.Components {
			ck, ok := galaxy.ParseComponentKind(name)
			if !ok {
				return nil, fmt.Errorf("%w: unknown component %q", ErrInvalidEntry, name)
			}
			s.Components = append(s.Components, galaxy.Component{Kind: ck})
		}
		return s, nil
	}
}

func (f *FieldEntry) morphology() (galaxy.Morphology, error) {
	switch f.Morphology {
	case "cloud":
		return galaxy.Cloud{Radius: galaxy.Distance(f.Radius)}, nil
	case "disk":
		return galaxy.Disk{Radius: galaxy.Distance(f.Radius)}, nil
	case "belt":
		if f.Inner > f.Outer {
			return nil, fmt.Errorf("%w: belt inner %d beyond outer %d", ErrInvalidEntry, f.Inner, f.Outer)
		}
		return galaxy.Belt{Inner: galaxy.Distance(f.Inner), Outer: galaxy.Distance(f.Outer)}, nil
	}
	return nil, fmt.Errorf("%w: unknown field morphology %q", ErrInvalidEntry, f.Morphology)
}

func (c *CompositionEntry) composition() galaxy.Composition {
	if c == nil {
		return galaxy.DefaultComposition()
	}
	return galaxy.Composition{
		Hydrogen: c.Hydrogen,
		Helium:   c.Helium,
		Rock:     c.Rock,
		Ice:      c.Ice,
		Metals:   c.Metals,
	}
}
