package ecs

import "testing"

func TestEntityIDEncoding(t *testing.T) {
	t.Parallel()

	id := NewEntityID(7, 3)
	if id.Index() != 7 {
		t.Errorf("Index() = %d, want 7", id.Index())
	}
	if id.Generation() != 3 {
		t.Errorf("Generation() = %d, want 3", id.Generation())
	}
	if id.IsZero() {
		t.Error("non-zero id reported IsZero")
	}
	if !EntityID(0).IsZero() {
		t.Error("zero id not reported as zero")
	}
}

func TestEntityPoolNeverHandsOutZero(t *testing.T) {
	t.Parallel()

	p := NewEntityPool()
	for i := 0; i < 100; i++ {
		id := p.Create()
		if id.IsZero() {
			t.Fatalf("Create() returned the zero id at iteration %d", i)
		}
		if !p.Alive(id) {
			t.Fatalf("freshly created id %d not alive", id)
		}
	}
	if p.Alive(0) {
		t.Error("zero id reported alive")
	}
}

func TestStoreInsertGet(t *testing.T) {
	t.Parallel()

	s := NewStore[string]()
	a := s.Insert("alpha")
	b := s.Insert("beta")

	if a == b {
		t.Fatalf("Insert returned duplicate ids: %d", a)
	}
	if got, ok := s.Get(a); !ok || *got != "alpha" {
		t.Errorf("Get(a) = %v, %v; want alpha, true", got, ok)
	}
	if got, ok := s.Get(b); !ok || *got != "beta" {
		t.Errorf("Get(b) = %v, %v; want beta, true", got, ok)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestStoreRejectsStaleAndUnknown(t *testing.T) {
	t.Parallel()

	s := NewStore[int]()
	id := s.Insert(42)

	tests := []struct {
		name string
		id   EntityID
	}{
		{"zero", 0},
		{"wrong generation", NewEntityID(id.Index(), id.Generation()+1)},
		{"out of range", NewEntityID(99, id.Generation())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := s.Get(tt.id); ok {
				t.Errorf("Get(%d) resolved, want absent", tt.id)
			}
			if s.Has(tt.id) {
				t.Errorf("Has(%d) = true, want false", tt.id)
			}
		})
	}
}

func TestStoreRejectsIDsFromAnotherStore(t *testing.T) {
	t.Parallel()

	a := NewStore[string]()
	b := NewStore[string]()
	idA := a.Insert("sun")
	idB := b.Insert("other sun")

	if idA.Index() != idB.Index() {
		t.Fatalf("first inserts got indices %d and %d, want equal", idA.Index(), idB.Index())
	}
	if a.Has(idB) || b.Has(idA) {
		t.Errorf("id from one store resolves in the other: %d, %d", idA, idB)
	}
	if idA.Generation() == 0 || idB.Generation() == 0 {
		t.Errorf("zero generation handed out: %d, %d", idA.Generation(), idB.Generation())
	}
}

func TestStoreGetIsMutable(t *testing.T) {
	t.Parallel()

	s := NewStore[[]int]()
	id := s.Insert(nil)
	v, _ := s.Get(id)
	*v = append(*v, 1, 2)

	got, _ := s.Get(id)
	if len(*got) != 2 {
		t.Errorf("mutation through Get not visible: %v", *got)
	}
}

func TestStoreEachOrderAndStop(t *testing.T) {
	t.Parallel()

	s := NewStore[int]()
	var ids []EntityID
	for i := 0; i < 5; i++ {
		ids = append(ids, s.Insert(i*10))
	}

	var seen []EntityID
	s.Each(func(id EntityID, v *int) bool {
		seen = append(seen, id)
		return len(seen) < 3
	})
	if len(seen) != 3 {
		t.Fatalf("Each visited %d entries after stop, want 3", len(seen))
	}
	for i := range seen {
		if seen[i] != ids[i] {
			t.Errorf("Each order[%d] = %d, want %d", i, seen[i], ids[i])
		}
	}
}
