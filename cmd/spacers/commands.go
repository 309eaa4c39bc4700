package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacers/spacers/internal/galaxy"
	"github.com/spacers/spacers/internal/tui"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Navigate the universe interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := newLogger(cfg.Logging, true)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			u, err := loadUniverse(cfg.Universe, log)
			if err != nil {
				return err
			}
			m, err := tui.New(u.galaxy, u.player, u.bus, tui.Options{
				Title:    cfg.View.Title,
				TickRate: cfg.View.TickRate,
				Log:      log.Named("tui"),
			})
			if err != nil {
				return err
			}
			return tui.Run(m)
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the universe hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := newLogger(cfg.Logging, false)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			u, err := loadUniverse(cfg.Universe, log)
			if err != nil {
				return err
			}

			printBanner(cfg.View.Title)
			printSection("Universe")
			printStat("Objects", u.galaxy.Len())
			printStat("Root-anchored", u.galaxy.RootCount())
			printOK("invariants hold")
			fmt.Println()

			printSection("Hierarchy")
			u.galaxy.Walk(func(h galaxy.Handle, e galaxy.Entity, depth int) bool {
				fmt.Println("  " + describe(u.galaxy, h, e, depth, h == u.player))
				return true
			})
			return nil
		},
	}
}

func newNearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "near X Y [K]",
		Short: "List the root-anchored objects nearest to a position",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			x, err := strconv.ParseFloat(args[0], 32)
			if err != nil {
				return fmt.Errorf("x: %w", err)
			}
			y, err := strconv.ParseFloat(args[1], 32)
			if err != nil {
				return fmt.Errorf("y: %w", err)
			}
			k := cfg.Spatial.Nearest
			if len(args) == 3 {
				if k, err = strconv.Atoi(args[2]); err != nil {
					return fmt.Errorf("k: %w", err)
				}
			}
			k = min(k, cfg.Spatial.MaxResults)

			log, err := newLogger(cfg.Logging, false)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			u, err := loadUniverse(cfg.Universe, log)
			if err != nil {
				return err
			}
			hits := u.galaxy.NearestRoots(galaxy.Position{X: float32(x), Y: float32(y)}, k)
			if len(hits) == 0 {
				fmt.Println("  no root-anchored objects")
				return nil
			}
			for i, hit := range hits {
				fmt.Printf("  %2d. %-24s (%.2f, %.2f)  dist %.3f\n", i+1, u.galaxy.Name(hit.ID), hit.Pos.X, hit.Pos.Y, hit.Dist)
			}
			return nil
		},
	}
}

// describe renders one hierarchy line for inspect.
func describe(g *galaxy.Galaxy, h galaxy.Handle, e galaxy.Entity, depth int, player bool) string {
	var b strings.Builder
	if depth > 0 {
		b.WriteString(strings.Repeat("  ", depth-1))
		b.WriteString("└ ")
	}
	fmt.Fprintf(&b, "%s [%s, mass %d]", e.Name, e.Kind.KindName(), e.Mass)
	switch a := e.Attachment.(type) {
	case galaxy.RootAnchor:
		fmt.Fprintf(&b, " @ (%.2f, %.2f)", a.Position.X, a.Position.Y)
	case galaxy.OrbitsEntity:
		fmt.Fprintf(&b, " %s", a.Relation)
	}
	if n := len(g.Children(h)); n > 0 {
		fmt.Fprintf(&b, " · %d children", n)
	}
	if player {
		b.WriteString(" ◀ you")
	}
	return b.String()
}
