package scripting

import (
	"errors"
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/spacers/spacers/internal/data"
	"github.com/spacers/spacers/internal/galaxy"
)

const handleTypeName = "handle"

// World is what scenario scripts may touch.
type World interface {
	Spawn(spec galaxy.Spec, at galaxy.Attachment) (galaxy.Handle, error)
	Get(h galaxy.Handle) (galaxy.Entity, bool)
	Depth(h galaxy.Handle) (int, error)
}

// Engine wraps a single gopher-lua VM running scenario scripts against a
// galaxy. Scripts see:
//
//	spawn(tbl)  -> handle   tbl is shaped like a universe.yaml object, plus
//	                        either x/y or parent (a handle) and orbit
//	get(h)      -> table    {name, mass, depth, children, kind} or nil
//	player(h)               marks h as the navigation focus
//
// Single-goroutine access only.
type Engine struct {
	vm     *lua.LState
	world  World
	log    *zap.Logger
	player galaxy.Handle
}

// NewEngine creates a VM bound to w.
func NewEngine(w World, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()
	e := &Engine{vm: vm, world: w, log: log}

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	mt := vm.NewTypeMetatable(handleTypeName)
	vm.SetField(mt, "__tostring", vm.NewFunction(func(L *lua.LState) int {
		h := checkHandle(L, 1)
		L.Push(lua.LString(fmt.Sprintf("handle(%d)", uint64(h))))
		return 1
	}))
	vm.SetField(mt, "__eq", vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkHandle(L, 1) == checkHandle(L, 2)))
		return 1
	}))

	vm.SetGlobal("spawn", vm.NewFunction(e.luaSpawn))
	vm.SetGlobal("get", vm.NewFunction(e.luaGet))
	vm.SetGlobal("player", vm.NewFunction(e.luaPlayer))
	return e
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// RunFile executes a scenario file.
func (e *Engine) RunFile(path string) error {
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("run %s: %w", path, err)
	}
	e.log.Debug("ran lua scenario", zap.String("file", path))
	return nil
}

// RunString executes scenario source.
func (e *Engine) RunString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("run scenario: %w", err)
	}
	return nil
}

// Player returns the handle last passed to player(), if any.
func (e *Engine) Player() (galaxy.Handle, bool) {
	return e.player, !e.player.IsZero()
}

func (e *Engine) pushHandle(L *lua.LState, h galaxy.Handle) {
	ud := L.NewUserData()
	ud.Value = h
	L.SetMetatable(ud, L.GetTypeMetatable(handleTypeName))
	L.Push(ud)
}

func checkHandle(L *lua.LState, n int) galaxy.Handle {
	ud := L.CheckUserData(n)
	h, ok := ud.Value.(galaxy.Handle)
	if !ok {
		L.ArgError(n, "handle expected")
		return 0
	}
	return h
}

func (e *Engine) luaSpawn(L *lua.LState) int {
	tbl := L.CheckTable(1)

	entry, err := tableEntry(tbl)
	if err != nil {
		L.RaiseError("spawn: %v", err)
		return 0
	}
	spec, err := entry.Spec()
	if err != nil {
		L.RaiseError("spawn: %v", err)
		return 0
	}

	at, err := tableAttachment(tbl)
	if err != nil {
		L.RaiseError("spawn %q: %v", entry.Name, err)
		return 0
	}

	h, err := e.world.Spawn(spec, at)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	e.pushHandle(L, h)
	return 1
}

func (e *Engine) luaGet(L *lua.LState) int {
	h := checkHandle(L, 1)
	ent, ok := e.world.Get(h)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	depth, _ := e.world.Depth(h)
	t := L.NewTable()
	t.RawSetString("name", lua.LString(ent.Name))
	t.RawSetString("mass", lua.LNumber(ent.Mass))
	t.RawSetString("depth", lua.LNumber(depth))
	t.RawSetString("children", lua.LNumber(len(ent.Children)))
	t.RawSetString("kind", lua.LString(ent.Kind.KindName()))
	L.Push(t)
	return 1
}

func (e *Engine) luaPlayer(L *lua.LState) int {
	h := checkHandle(L, 1)
	if _, ok := e.world.Get(h); !ok {
		L.ArgError(1, "player handle does not resolve")
		return 0
	}
	e.player = h
	return 0
}

// tableEntry converts a Lua object table into the same entry shape the
// universe file uses, so both paths share validation.
func tableEntry(t *lua.LTable) (data.ObjectEntry, error) {
	var e data.ObjectEntry
	e.Name = lua.LVAsString(t.RawGetString("name"))
	mass, _, err := wholeNumber(t, "mass")
	if err != nil {
		return e, fmt.Errorf("%q: %w", e.Name, err)
	}
	e.Mass = int64(mass)

	if m, ok := t.RawGetString("maneuver").(*lua.LTable); ok {
		e.Maneuver = &data.ManeuverEntry{DeltaV: float64(lua.LVAsNumber(m.RawGetString("delta_v")))}
	}
	if k, ok := t.RawGetString("kind").(*lua.LTable); ok {
		kind, err := tableKind(k)
		if err != nil {
			return e, err
		}
		e.Kind = kind
	}
	if cs, ok := t.RawGetString("children").(*lua.LTable); ok {
		for i := 1; i <= cs.Len(); i++ {
			ct, ok := cs.RawGetInt(i).(*lua.LTable)
			if !ok {
				return e, fmt.Errorf("%q: children[%d] is not a table", e.Name, i)
			}
			child, err := tableEntry(ct)
			if err != nil {
				return e, err
			}
			alt, ok, err := wholeNumber(ct, "orbit")
			if err != nil {
				return e, fmt.Errorf("%q: child %q: %w", e.Name, child.Name, err)
			}
			if ok {
				orbit := uint64(alt)
				child.Orbit = &orbit
			}
			e.Children = append(e.Children, child)
		}
	}
	return e, nil
}

// tableAttachment reads either parent plus orbit, or x plus y.
func tableAttachment(t *lua.LTable) (galaxy.Attachment, error) {
	if p := t.RawGetString("parent"); p != lua.LNil {
		ud, ok := p.(*lua.LUserData)
		if !ok {
			return nil, errors.New("parent must be a handle")
		}
		parent, ok := ud.Value.(galaxy.Handle)
		if !ok {
			return nil, errors.New("parent must be a handle")
		}
		alt, ok, err := wholeNumber(t, "orbit")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("orbit is required with parent")
		}
		return galaxy.InOrbit(parent, uint64(alt)), nil
	}
	x, err := coordinate(t, "x")
	if err != nil {
		return nil, err
	}
	y, err := coordinate(t, "y")
	if err != nil {
		return nil, err
	}
	return galaxy.AtPosition(x, y), nil
}

// wholeNumber reads an optional non-negative integer field.
func wholeNumber(t *lua.LTable, key string) (float64, bool, error) {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return 0, false, nil
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, true, fmt.Errorf("%s must be a number, got %s", key, v.Type())
	}
	f := float64(n)
	if f < 0 || f != math.Trunc(f) || f >= 1<<63 {
		return 0, true, fmt.Errorf("%s must be a non-negative integer, got %v", key, f)
	}
	return f, true, nil
}

// coordinate reads a required finite position component.
func coordinate(t *lua.LTable, key string) (float32, error) {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return 0, fmt.Errorf("%s is required without parent", key)
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("%s must be a number, got %s", key, v.Type())
	}
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be finite, got %v", key, f)
	}
	return float32(f), nil
}

func tableKind(t *lua.LTable) (*data.KindEntry, error) {
	k := &data.KindEntry{}
	if b, ok := t.RawGetString("body").(*lua.LTable); ok {
		k.Body = &data.BodyEntry{
			Radius:      uint64(lua.LVAsNumber(b.RawGetString("radius"))),
			Composition: tableComposition(b.RawGetString("composition")),
		}
	}
	if f, ok := t.RawGetString("field").(*lua.LTable); ok {
		k.Field = &data.FieldEntry{
			Composition: tableComposition(f.RawGetString("composition")),
			Morphology:  lua.LVAsString(f.RawGetString("morphology")),
			Radius:      uint64(lua.LVAsNumber(f.RawGetString("radius"))),
			Inner:       uint64(lua.LVAsNumber(f.RawGetString("inner"))),
			Outer:       uint64(lua.LVAsNumber(f.RawGetString("outer"))),
		}
	}
	if s, ok := t.RawGetString("structure").(*lua.LTable); ok {
		k.Structure = &data.StructureEntry{}
		if cs, ok := s.RawGetString("components").(*lua.LTable); ok {
			for i := 1; i <= cs.Len(); i++ {
				name, ok := cs.RawGetInt(i).(lua.LString)
				if !ok {
					return nil, fmt.Errorf("components[%d] is not a string", i)
				}
				k.Structure.Components = append(k.Structure.Components, string(name))
			}
		}
	}
	return k, nil
}

func tableComposition(v lua.LValue) *data.CompositionEntry {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	return &data.CompositionEntry{
		Hydrogen: float32(lua.LVAsNumber(t.RawGetString("hydrogen"))),
		Helium:   float32(lua.LVAsNumber(t.RawGetString("helium"))),
		Rock:     float32(lua.LVAsNumber(t.RawGetString("rock"))),
		Ice:      float32(lua.LVAsNumber(t.RawGetString("ice"))),
		Metals:   float32(lua.LVAsNumber(t.RawGetString("metals"))),
	}
}
