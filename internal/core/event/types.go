package event

import "github.com/spacers/spacers/internal/core/ecs"

// EntitySpawned is emitted once per entity created by a spawn, nested
// children included. Parent is zero for root-anchored entities.
type EntitySpawned struct {
	Handle ecs.EntityID
	Parent ecs.EntityID
	Name   string
	Depth  int
}

// Root reports whether the spawned entity is root-anchored.
func (e EntitySpawned) Root() bool { return e.Parent.IsZero() }

// FocusChanged is emitted by the interactive shell after navigation moves to
// a new focus. A zero Focus means the universe root.
type FocusChanged struct {
	Focus ecs.EntityID
	Chain []ecs.EntityID
}
