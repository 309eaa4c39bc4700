package ecs

// Store is a generational slot table owning values of type T by value.
// Values live in a dense slice indexed by EntityID.Index(); every lookup is
// validated against the pool so stale or foreign ids read as absent.
// Not safe for concurrent use.
type Store[T any] struct {
	pool  *EntityPool
	slots []T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		pool:  NewEntityPool(),
		slots: make([]T, 0, 256),
	}
}

// Insert stores v under a freshly allocated id. Never fails.
func (s *Store[T]) Insert(v T) EntityID {
	id := s.pool.Create()
	s.slots = append(s.slots, v)
	return id
}

// Get returns a pointer to the value stored under id, or false when id is
// unknown or stale. The pointer is only valid until the next Insert.
func (s *Store[T]) Get(id EntityID) (*T, bool) {
	if !s.pool.Alive(id) {
		return nil, false
	}
	return &s.slots[id.Index()], true
}

func (s *Store[T]) Has(id EntityID) bool {
	return s.pool.Alive(id)
}

func (s *Store[T]) Len() int {
	return len(s.slots)
}

// Each visits every stored value in allocation order. Returning false from
// fn stops the iteration.
func (s *Store[T]) Each(fn func(EntityID, *T) bool) {
	for i := range s.slots {
		id := NewEntityID(uint32(i), s.pool.generations[i])
		if !fn(id, &s.slots[i]) {
			return
		}
	}
}
