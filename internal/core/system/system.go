package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseUpdate Phase = iota // 0: systems that read or spawn into the world
	PhaseEvents              // 1: deliver events emitted earlier in the tick
)

// System is the interface every per-tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Func adapts a plain function to a System in the given phase.
func Func(phase Phase, fn func(dt time.Duration)) System {
	return funcSystem{phase: phase, fn: fn}
}

type funcSystem struct {
	phase Phase
	fn    func(time.Duration)
}

func (s funcSystem) Phase() Phase            { return s.phase }
func (s funcSystem) Update(dt time.Duration) { s.fn(dt) }
