// Package nav turns a focus entity into a breadcrumb: the chain of its
// ancestors from the root anchor down, plus a cyclic cursor used to pick an
// ancestor as the next focus.
//
// Cursor positions 0..len(chain)-1 select chain entries; position
// len(chain) is the universe root, which sits between the two ends of the
// cycle. With an empty chain the only position is 0, the universe root.
package nav

import (
	"fmt"

	"github.com/spacers/spacers/internal/galaxy"
)

// Lineage is the part of the galaxy a view needs.
type Lineage interface {
	Attachment(h galaxy.Handle) (galaxy.Attachment, bool)
	Len() int
}

// ResolveChain returns the ancestors of focus ordered root first, focus
// excluded. A root-anchored focus yields an empty chain.
func ResolveChain(w Lineage, focus galaxy.Handle) ([]galaxy.Handle, error) {
	at, ok := w.Attachment(focus)
	if !ok {
		return nil, fmt.Errorf("resolve chain for %d: %w", focus, galaxy.ErrNotFound)
	}
	var walk []galaxy.Handle
	for {
		o, orbiting := at.(galaxy.OrbitsEntity)
		if !orbiting {
			break
		}
		if len(walk) >= w.Len() {
			return nil, fmt.Errorf("resolve chain for %d: %w", focus, galaxy.ErrCycle)
		}
		walk = append(walk, o.Parent)
		if at, ok = w.Attachment(o.Parent); !ok {
			return nil, fmt.Errorf("resolve chain for %d: parent %d: %w", focus, o.Parent, galaxy.ErrNotFound)
		}
	}
	for i, j := 0, len(walk)-1; i < j; i, j = i+1, j-1 {
		walk[i], walk[j] = walk[j], walk[i]
	}
	return walk, nil
}

// Cursor is Unset or a position in 0..len(chain).
type Cursor int

// Unset means no breadcrumb entry is selected.
const Unset Cursor = -1

// At returns the cursor for position i.
func At(i int) Cursor { return Cursor(i) }

func (c Cursor) IsSet() bool { return c >= 0 }

// Index returns the selected position, or -1 when unset.
func (c Cursor) Index() int { return int(c) }

func (c Cursor) String() string {
	if !c.IsSet() {
		return "unset"
	}
	return fmt.Sprintf("at(%d)", int(c))
}

// Command is a cursor instruction from the interaction layer.
type Command int

const (
	MoveLeft Command = iota
	MoveRight
	Confirm
	Cancel
)

func (c Command) String() string {
	switch c {
	case MoveLeft:
		return "move-left"
	case MoveRight:
		return "move-right"
	case Confirm:
		return "confirm"
	case Cancel:
		return "cancel"
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// View is the breadcrumb state: a focus, its resolved chain and a cursor.
// A zero focus is the universe root. View performs no I/O.
type View struct {
	world  Lineage
	focus  galaxy.Handle
	chain  []galaxy.Handle
	cursor Cursor
}

// NewView returns a view at the universe root.
func NewView(w Lineage) *View {
	return &View{world: w, cursor: Unset}
}

// Focus returns the focused entity, false at the universe root.
func (v *View) Focus() (galaxy.Handle, bool) {
	return v.focus, !v.focus.IsZero()
}

// Chain returns a copy of the resolved chain, root first.
func (v *View) Chain() []galaxy.Handle {
	return append([]galaxy.Handle(nil), v.chain...)
}

func (v *View) Cursor() Cursor { return v.cursor }

// Selected returns the chain entry under the cursor. False when the cursor
// is unset or on the universe root position.
func (v *View) Selected() (galaxy.Handle, bool) {
	i := v.cursor.Index()
	if i < 0 || i >= len(v.chain) {
		return 0, false
	}
	return v.chain[i], true
}

// OnRoot reports whether the cursor sits on the universe root position.
func (v *View) OnRoot() bool {
	return v.cursor.Index() == len(v.chain)
}

// Apply executes one cursor command. Only Confirm can fail, when the
// selected ancestor no longer resolves; the view is unchanged then.
func (v *View) Apply(cmd Command) error {
	switch cmd {
	case MoveLeft:
		v.MoveLeft()
	case MoveRight:
		v.MoveRight()
	case Confirm:
		return v.Confirm()
	case Cancel:
		v.Cancel()
	default:
		return fmt.Errorf("unknown command %d", int(cmd))
	}
	return nil
}

// MoveLeft steps toward the root, wrapping from position 0 to the universe
// root position.
func (v *View) MoveLeft() {
	n := len(v.chain)
	switch i := v.cursor.Index(); {
	case i < 0:
		v.cursor = At(max(n-1, 0))
	case i == 0:
		v.cursor = At(n)
	default:
		v.cursor = At(i - 1)
	}
}

// MoveRight steps toward the focus, wrapping from the universe root
// position back to 0.
func (v *View) MoveRight() {
	n := len(v.chain)
	switch i := v.cursor.Index(); {
	case i < 0, i >= n:
		v.cursor = At(0)
	default:
		v.cursor = At(i + 1)
	}
}

// Confirm makes the entry under the cursor the new focus. On the universe
// root position it clears focus and chain. Unset cursors are a no-op.
func (v *View) Confirm() error {
	if !v.cursor.IsSet() {
		return nil
	}
	h, ok := v.Selected()
	if !ok {
		v.focus, v.chain, v.cursor = 0, nil, Unset
		return nil
	}
	return v.Reset(h)
}

// Cancel clears the cursor, keeping the chain.
func (v *View) Cancel() {
	v.cursor = Unset
}

// Reset focuses h, recomputing the chain and clearing the cursor.
func (v *View) Reset(h galaxy.Handle) error {
	chain, err := ResolveChain(v.world, h)
	if err != nil {
		return err
	}
	v.focus, v.chain, v.cursor = h, chain, Unset
	return nil
}
