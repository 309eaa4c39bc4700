package ecs

import "sync/atomic"

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generations start at 1, so the zero EntityID never
// refers to a live entity and can be used as "no entity".
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// epochs numbers pools so ids from one pool do not resolve in another.
var epochs atomic.Uint32

func nextEpoch() uint32 {
	for {
		if g := epochs.Add(1); g != 0 {
			return g
		}
	}
}

// EntityPool hands out generational indices. Slots are never recycled
// while their entity exists; a slot whose generation moved on rejects every
// older EntityID that pointed at it. Each pool starts its slots at its own
// non-zero epoch generation.
type EntityPool struct {
	epoch       uint32
	generations []uint32
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		epoch:       nextEpoch(),
		generations: make([]uint32, 0, 1024),
	}
}

func (p *EntityPool) Create() EntityID {
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, p.epoch)
	return NewEntityID(idx, p.epoch)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if int(idx) >= len(p.generations) {
		return false
	}
	return p.generations[idx] == id.Generation()
}

// Len returns the number of slots allocated so far.
func (p *EntityPool) Len() int {
	return len(p.generations)
}
