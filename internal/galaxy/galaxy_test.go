package galaxy

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/spacers/spacers/internal/core/ecs"
	"github.com/spacers/spacers/internal/core/event"
)

// solarSystem spawns Sun at (1.2, 0.7), Planet orbiting Sun at 1_200_000 and
// Ship orbiting Planet at 20_000.
func solarSystem(t *testing.T) (g *Galaxy, sun, planet, ship Handle) {
	t.Helper()
	g = New(nil)
	var err error
	sun, err = g.Spawn(Spec{Name: "Sun", Mass: 1_989_000}, AtPosition(1.2, 0.7))
	if err != nil {
		t.Fatalf("spawn Sun: %v", err)
	}
	planet, err = g.Spawn(Spec{Name: "Planet", Mass: 5_972}, InOrbit(sun, 1_200_000))
	if err != nil {
		t.Fatalf("spawn Planet: %v", err)
	}
	ship, err = g.Spawn(Spec{
		Name:     "Ship",
		Mass:     4_000,
		Kind:     Structure{Components: []Component{{Kind: Reactor}, {Kind: Thruster}}},
		Maneuver: &Maneuver{DeltaV: 9.4},
	}, InOrbit(planet, 20_000))
	if err != nil {
		t.Fatalf("spawn Ship: %v", err)
	}
	return g, sun, planet, ship
}

func TestSolarSystemScenario(t *testing.T) {
	t.Parallel()

	g, sun, planet, ship := solarSystem(t)

	anc, err := g.Ancestors(ship)
	if err != nil {
		t.Fatalf("Ancestors(Ship): %v", err)
	}
	if len(anc) != 2 || anc[0] != planet || anc[1] != sun {
		t.Errorf("Ancestors(Ship) = %v, want [Planet Sun]", anc)
	}

	e, ok := g.Get(ship)
	if !ok {
		t.Fatal("Get(Ship) absent")
	}
	if e.Mass != 4_000 {
		t.Errorf("Ship mass = %d, want 4000", e.Mass)
	}

	if g.RootCount() != 1 {
		t.Errorf("RootCount() = %d, want 1", g.RootCount())
	}
	if roots := g.Roots(); len(roots) != 1 || roots[0] != sun {
		t.Errorf("Roots() = %v, want [Sun]", roots)
	}

	r, ok := g.ChildRelation(planet, ship)
	if !ok {
		t.Fatal("Planet has no children entry for Ship")
	}
	if r != (Orbit{Altitude: 20_000}) {
		t.Errorf("Planet children[Ship] = %v, want orbit(20000)", r)
	}

	if errs := g.Check(); len(errs) != 0 {
		t.Errorf("Check() = %v", errs)
	}
}

func TestSpawnRoundTrip(t *testing.T) {
	t.Parallel()

	g := New(nil)
	kinds := []Kind{
		Body{Composition: Composition{Hydrogen: 0.73, Helium: 0.25, Metals: 0.02}, Radius: 696_000_000},
		Field{Composition: Composition{Ice: 0.6, Rock: 0.4}, Morphology: Belt{Inner: 10, Outer: 20}},
		Field{Composition: DefaultComposition(), Morphology: Cloud{Radius: 5}},
		Structure{Components: []Component{{Kind: Cargo}, {Kind: Drill}}},
	}
	for i, k := range kinds {
		spec := Spec{Name: k.KindName(), Mass: Mass(100 + i), Kind: k}
		h, err := g.Spawn(spec, AtPosition(float32(i), 0))
		if err != nil {
			t.Fatalf("Spawn(%d): %v", i, err)
		}
		e, ok := g.Get(h)
		if !ok {
			t.Fatalf("Get(%d) absent", i)
		}
		if e.Name != spec.Name || e.Mass != spec.Mass {
			t.Errorf("round trip %d: got (%q, %d), want (%q, %d)", i, e.Name, e.Mass, spec.Name, spec.Mass)
		}
		if e.Kind.KindName() != k.KindName() {
			t.Errorf("round trip %d: kind %s, want %s", i, e.Kind.KindName(), k.KindName())
		}
	}

	e, _ := g.Get(g.Roots()[1])
	f, ok := e.Kind.(Field)
	if !ok || f.Morphology != (Belt{Inner: 10, Outer: 20}) {
		t.Errorf("field morphology = %#v, want belt 10..20", e.Kind)
	}
}

func TestSpawnDefaults(t *testing.T) {
	t.Parallel()

	g := New(nil)
	h, err := g.Spawn(Spec{}, AtPosition(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	e, _ := g.Get(h)
	if e.Mass != DefaultMass || e.Name != DefaultName {
		t.Errorf("defaults = (%d, %q), want (%d, %q)", e.Mass, e.Name, DefaultMass, DefaultName)
	}
	if b, ok := e.Kind.(Body); !ok || b.Composition != DefaultComposition() {
		t.Errorf("default kind = %#v, want rock body", e.Kind)
	}
	if e.Children == nil {
		t.Error("Children is nil, want empty map")
	}
	if e.Maneuver != nil {
		t.Error("Maneuver set without being requested")
	}
}

func TestSpawnRejections(t *testing.T) {
	t.Parallel()

	g, sun, _, _ := solarSystem(t)
	before := g.Len()

	tests := []struct {
		name string
		spec Spec
		at   Attachment
		want error
	}{
		{"unknown parent", Spec{Name: "Moon"}, InOrbit(ecs.NewEntityID(500, 1), 10), ErrInvalidParent},
		{"stale parent", Spec{Name: "Moon"}, InOrbit(ecs.NewEntityID(sun.Index(), sun.Generation()+1), 10), ErrInvalidParent},
		{"zero parent", Spec{Name: "Moon"}, InOrbit(0, 10), ErrInvalidParent},
		{"nil attachment", Spec{Name: "Lost"}, nil, ErrInvalidAttachment},
		{"NaN position", Spec{Name: "Ghost"}, AtPosition(float32(math.NaN()), 0), ErrInvalidAttachment},
		{"infinite position", Spec{Name: "Ghost"}, AtPosition(0, float32(math.Inf(-1))), ErrInvalidAttachment},
		{"nil relation", Spec{Name: "Moon"}, OrbitsEntity{Parent: sun}, ErrInvalidRelation},
		{"nil child relation", Spec{Name: "Moon"}.WithChild(Spec{Name: "Rock"}, nil), InOrbit(sun, 10), ErrInvalidRelation},
		{
			"nil grandchild relation",
			Spec{Name: "Moon"}.WithChild(Spec{Name: "Rock"}.WithChild(Spec{Name: "Dust"}, nil), Orbit{Altitude: 1}),
			AtPosition(3, 3),
			ErrInvalidRelation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Spawn(tt.spec, tt.at)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Spawn error = %v, want %v", err, tt.want)
			}
			var se *SpawnError
			if !errors.As(err, &se) {
				t.Errorf("error %T is not a *SpawnError", err)
			}
			if g.Len() != before {
				t.Errorf("rejected spawn created entities: Len %d → %d", before, g.Len())
			}
		})
	}
	if errs := g.Check(); len(errs) != 0 {
		t.Errorf("Check() after rejections = %v", errs)
	}
	if hits := g.NearestRoots(Position{}, g.RootCount()); len(hits) != 1 || hits[0].ID != sun {
		t.Errorf("NearestRoots after rejections = %v, want only Sun", hits)
	}
}

func TestSpawnNestedChildren(t *testing.T) {
	t.Parallel()

	g := New(nil)
	bus := event.NewBus()
	g.SetBus(bus)
	var spawned []event.EntitySpawned
	event.Subscribe(bus, func(e event.EntitySpawned) { spawned = append(spawned, e) })

	moon := Spec{Name: "Moon", Mass: 73}
	earth := Spec{Name: "Earth", Mass: 5972}.WithChild(moon, Orbit{Altitude: 384_400})
	sol := Spec{Name: "Sol", Mass: 1_989_000}.
		WithChild(earth, Orbit{Altitude: 149_600_000}).
		WithChild(Spec{Name: "Belt", Kind: Field{Morphology: Belt{Inner: 300, Outer: 500}}}, Orbit{Altitude: 400})

	h, err := g.Spawn(sol, AtPosition(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", g.Len())
	}
	if g.RootCount() != 1 {
		t.Errorf("RootCount() = %d, want 1", g.RootCount())
	}

	kids := g.Children(h)
	if len(kids) != 2 {
		t.Fatalf("Sol has %d children, want 2", len(kids))
	}
	earthH := kids[0]
	if g.Name(earthH) != "Earth" {
		t.Errorf("first child = %q, want Earth", g.Name(earthH))
	}
	moons := g.Children(earthH)
	if len(moons) != 1 || g.Name(moons[0]) != "Moon" {
		t.Fatalf("Earth children = %v, want [Moon]", moons)
	}
	if d, _ := g.Depth(moons[0]); d != 2 {
		t.Errorf("Depth(Moon) = %d, want 2", d)
	}
	root, pos, err := g.Root(moons[0])
	if err != nil || root != h || pos != (Position{}) {
		t.Errorf("Root(Moon) = %d, %v, %v; want Sol at origin", root, pos, err)
	}

	bus.Flush()
	if len(spawned) != 4 {
		t.Fatalf("got %d spawn events, want 4", len(spawned))
	}
	wantDepth := map[string]int{"Sol": 0, "Earth": 1, "Moon": 2, "Belt": 1}
	for _, ev := range spawned {
		if ev.Depth != wantDepth[ev.Name] {
			t.Errorf("%s spawned at depth %d, want %d", ev.Name, ev.Depth, wantDepth[ev.Name])
		}
		if ev.Root() != (ev.Name == "Sol") {
			t.Errorf("%s Root() = %v", ev.Name, ev.Root())
		}
	}

	if errs := g.Check(); len(errs) != 0 {
		t.Errorf("Check() = %v", errs)
	}
}

func TestWithChildDoesNotAlias(t *testing.T) {
	t.Parallel()

	base := Spec{Name: "base"}.WithChild(Spec{Name: "a"}, Orbit{})
	x := base.WithChild(Spec{Name: "x"}, Orbit{})
	y := base.WithChild(Spec{Name: "y"}, Orbit{})
	if x.Children[1].Spec.Name != "x" || y.Children[1].Spec.Name != "y" {
		t.Errorf("WithChild aliased: x=%q y=%q", x.Children[1].Spec.Name, y.Children[1].Spec.Name)
	}
	if len(base.Children) != 1 {
		t.Errorf("base grew to %d children", len(base.Children))
	}
}

func TestGetSnapshotIsolation(t *testing.T) {
	t.Parallel()

	g, _, planet, ship := solarSystem(t)
	e, _ := g.Get(planet)
	delete(e.Children, ship)
	e.Name = "Renamed"

	if _, ok := g.ChildRelation(planet, ship); !ok {
		t.Error("mutating a snapshot's children leaked into the galaxy")
	}
	if g.Name(planet) != "Planet" {
		t.Error("mutating a snapshot's name leaked into the galaxy")
	}

	s, _ := g.Get(ship)
	s.Maneuver.DeltaV = 0
	s2, _ := g.Get(ship)
	if s2.Maneuver.DeltaV != 9.4 {
		t.Error("mutating a snapshot's maneuver leaked into the galaxy")
	}
}

func TestGetAbsent(t *testing.T) {
	t.Parallel()

	g, sun, _, _ := solarSystem(t)
	for _, h := range []Handle{0, ecs.NewEntityID(99, sun.Generation()), ecs.NewEntityID(sun.Index(), sun.Generation()+7)} {
		if _, ok := g.Get(h); ok {
			t.Errorf("Get(%d) resolved", h)
		}
		if _, ok := g.Attachment(h); ok {
			t.Errorf("Attachment(%d) resolved", h)
		}
		if _, err := g.Ancestors(h); !errors.Is(err, ErrNotFound) {
			t.Errorf("Ancestors(%d) error = %v, want ErrNotFound", h, err)
		}
	}
}

func TestStructureReactors(t *testing.T) {
	t.Parallel()

	s := Structure{Components: []Component{{Kind: Cargo}, {Kind: Reactor}, {Kind: Drill}, {Kind: Reactor}}}
	if got := s.ComponentsOf(Reactor); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("ComponentsOf(Reactor) = %v, want [1 3]", got)
	}
	if got := s.Reactors(); len(got) != 2 {
		t.Errorf("Reactors() returned %d, want 2", len(got))
	}
	if k, ok := ParseComponentKind("thruster"); !ok || k != Thruster {
		t.Errorf("ParseComponentKind(thruster) = %v, %v", k, ok)
	}
	if _, ok := ParseComponentKind("warpcore"); ok {
		t.Error("ParseComponentKind accepted an unknown kind")
	}
}

func TestNearestRoots(t *testing.T) {
	t.Parallel()

	g := New(nil)
	far, _ := g.Spawn(Spec{Name: "far"}, AtPosition(100, 100))
	near, _ := g.Spawn(Spec{Name: "near"}, AtPosition(1, 1))
	g.Spawn(Spec{Name: "moon"}, InOrbit(near, 5))

	hits := g.NearestRoots(Position{}, 5)
	if len(hits) != 2 || hits[0].ID != near || hits[1].ID != far {
		t.Errorf("NearestRoots = %v, want [near far]", hits)
	}
	if got := g.RootsWithin(Position{X: 0, Y: 0}, Position{X: 2, Y: 2}); len(got) != 1 || got[0] != near {
		t.Errorf("RootsWithin = %v, want [near]", got)
	}
	if got := g.RootsInRadius(Position{X: 100, Y: 100}, 1); len(got) != 1 || got[0].ID != far {
		t.Errorf("RootsInRadius = %v, want [far]", got)
	}
}

// randomGalaxy builds a galaxy of n entities where each new entity either
// anchors at a random position or orbits a random existing entity.
func randomGalaxy(t *testing.T, seed int64, n int) (*Galaxy, []Handle) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	g := New(nil)
	var hs []Handle
	for i := 0; i < n; i++ {
		var at Attachment
		if len(hs) == 0 || rng.Intn(4) == 0 {
			at = AtPosition(rng.Float32()*100, rng.Float32()*100)
		} else {
			at = InOrbit(hs[rng.Intn(len(hs))], uint64(rng.Intn(1_000_000)))
		}
		h, err := g.Spawn(Spec{Mass: Mass(i + 1)}, at)
		if err != nil {
			t.Fatalf("spawn %d: %v", i, err)
		}
		hs = append(hs, h)
	}
	return g, hs
}

func TestInvariantsHoldOnRandomGalaxies(t *testing.T) {
	t.Parallel()

	for seed := int64(1); seed <= 20; seed++ {
		g, hs := randomGalaxy(t, seed, 60)

		seen := make(map[Handle]bool, len(hs))
		roots := 0
		for _, h := range hs {
			if seen[h] {
				t.Fatalf("seed %d: duplicate handle %d", seed, h)
			}
			seen[h] = true

			anc, err := g.Ancestors(h)
			if err != nil {
				t.Fatalf("seed %d: Ancestors(%d): %v", seed, h, err)
			}
			if len(anc) > g.Len() {
				t.Errorf("seed %d: walk of %d took %d steps, more than %d entities", seed, h, len(anc), g.Len())
			}
			e, _ := g.Get(h)
			if e.RootAnchored() {
				roots++
				if len(anc) != 0 {
					t.Errorf("seed %d: root %d has ancestors", seed, h)
				}
			} else {
				last := anc[len(anc)-1]
				if a, _ := g.Attachment(last); a == nil {
					t.Errorf("seed %d: ancestor %d unresolvable", seed, last)
				} else if _, ok := a.(RootAnchor); !ok {
					t.Errorf("seed %d: walk from %d ended at non-root %d", seed, h, last)
				}
			}
		}
		if roots != g.RootCount() {
			t.Errorf("seed %d: %d root-anchored entities, index holds %d", seed, roots, g.RootCount())
		}
		if errs := g.Check(); len(errs) != 0 {
			t.Errorf("seed %d: Check() = %v", seed, errs)
		}
	}
}

func TestWalkVisitsEveryEntityOnce(t *testing.T) {
	t.Parallel()

	g, hs := randomGalaxy(t, 42, 40)
	visits := make(map[Handle]int)
	g.Walk(func(h Handle, e Entity, depth int) bool {
		visits[h]++
		if d, _ := g.Depth(h); d != depth {
			t.Errorf("Walk depth %d for %d, Depth() says %d", depth, h, d)
		}
		return true
	})
	if len(visits) != len(hs) {
		t.Errorf("Walk visited %d entities, want %d", len(visits), len(hs))
	}
	for h, n := range visits {
		if n != 1 {
			t.Errorf("Walk visited %d %d times", h, n)
		}
	}
}
