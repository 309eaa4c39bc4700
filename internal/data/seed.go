package data

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spacers/spacers/internal/galaxy"
)

// Spawner is the part of a galaxy seeding needs.
type Spawner interface {
	Spawn(spec galaxy.Spec, at galaxy.Attachment) (galaxy.Handle, error)
	Children(h galaxy.Handle) []galaxy.Handle
	Name(h galaxy.Handle) string
}

// Seeded reports what a Seed call created.
type Seeded struct {
	// Names maps each object name to the first entity spawned under it.
	Names  map[string]galaxy.Handle
	Roots  []galaxy.Handle
	Player galaxy.Handle // zero when the universe names no player
	Count  int
}

// Seed spawns every object of u into g. u is validated up front, so an
// invalid entry or unknown player leaves g untouched.
func Seed(g Spawner, u *Universe, log *zap.Logger) (*Seeded, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	s := &Seeded{Names: make(map[string]galaxy.Handle)}
	for i := range u.Objects {
		spec, at, err := u.Objects[i].RootSpec()
		if err != nil {
			return s, fmt.Errorf("objects[%d]: %w", i, err)
		}
		h, err := g.Spawn(spec, at)
		if err != nil {
			return s, fmt.Errorf("objects[%d]: %w", i, err)
		}
		s.Roots = append(s.Roots, h)
		s.record(g, h)
	}
	if u.Player != "" {
		p, ok := s.Names[u.Player]
		if !ok {
			return s, fmt.Errorf("%w: player %q not declared", ErrInvalidEntry, u.Player)
		}
		s.Player = p
	}
	log.Info("universe seeded",
		zap.Int("objects", s.Count),
		zap.Int("roots", len(s.Roots)),
		zap.String("player", u.Player),
	)
	return s, nil
}

func (s *Seeded) record(g Spawner, h galaxy.Handle) {
	s.Count++
	if name := g.Name(h); name != "" {
		if _, dup := s.Names[name]; !dup {
			s.Names[name] = h
		}
	}
	for _, c := range g.Children(h) {
		s.record(g, c)
	}
}
