package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spacers/spacers/internal/config"
	"github.com/spacers/spacers/internal/core/event"
	"github.com/spacers/spacers/internal/data"
	"github.com/spacers/spacers/internal/galaxy"
	"github.com/spacers/spacers/internal/scripting"
)

// universe is the loaded world plus where navigation starts.
type universe struct {
	galaxy *galaxy.Galaxy
	bus    *event.Bus
	player galaxy.Handle
}

// loadUniverse seeds a galaxy from the configured YAML file, then runs the
// configured Lua scenario on top of it. A player named in config wins over
// one picked by the file or the script.
func loadUniverse(cfg config.UniverseConfig, log *zap.Logger) (*universe, error) {
	bus := event.NewBus()
	event.Subscribe(bus, func(e event.EntitySpawned) {
		log.Debug("spawned",
			zap.String("name", e.Name),
			zap.Uint64("handle", uint64(e.Handle)),
			zap.Int("depth", e.Depth),
			zap.Bool("root", e.Root()),
		)
	})
	event.Subscribe(bus, func(e event.FocusChanged) {
		log.Debug("focus changed", zap.Uint64("focus", uint64(e.Focus)), zap.Int("chain", len(e.Chain)))
	})

	g := galaxy.New(log.Named("galaxy"))
	g.SetBus(bus)
	u := &universe{galaxy: g, bus: bus}

	if cfg.File != "" {
		def, err := data.LoadUniverse(cfg.File)
		if err != nil {
			return nil, err
		}
		seeded, err := data.Seed(g, def, log)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", cfg.File, err)
		}
		u.player = seeded.Player
	}

	if cfg.Script != "" {
		eng := scripting.NewEngine(g, log.Named("lua"))
		defer eng.Close()
		if err := eng.RunFile(cfg.Script); err != nil {
			return nil, err
		}
		if p, ok := eng.Player(); ok {
			u.player = p
		}
	}

	if cfg.Player != "" {
		p, ok := findByName(g, cfg.Player)
		if !ok {
			return nil, fmt.Errorf("player %q not found in universe", cfg.Player)
		}
		u.player = p
	}

	if errs := g.Check(); len(errs) > 0 {
		for _, err := range errs {
			log.Error("invariant violated", zap.Error(err))
		}
		return nil, fmt.Errorf("universe inconsistent: %d invariant violations", len(errs))
	}

	bus.Flush()
	return u, nil
}

func findByName(g *galaxy.Galaxy, name string) (galaxy.Handle, bool) {
	var found galaxy.Handle
	g.Walk(func(h galaxy.Handle, e galaxy.Entity, _ int) bool {
		if found.IsZero() && e.Name == name {
			found = h
		}
		return found.IsZero()
	})
	return found, !found.IsZero()
}
