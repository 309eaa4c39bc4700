package tui

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"github.com/spacers/spacers/internal/galaxy"
	"github.com/spacers/spacers/internal/nav"
)

// maxLabelCols caps the display width of a single breadcrumb label.
const maxLabelCols = 24

type role int

const (
	roleAncestor role = iota
	roleSelected
	roleFocus       // focus while the cursor is elsewhere
	roleFocusActive // focus with no cursor
)

type segment struct {
	label string
	role  role
}

// Namer resolves display names.
type Namer interface {
	Name(h galaxy.Handle) string
}

// pathSegments lays out "Root > chain... > focus". The universe root is the
// focus when nothing else is.
func pathSegments(n Namer, v *nav.View) []segment {
	cur := v.Cursor()
	focus, hasFocus := v.Focus()
	chain := v.Chain()

	segs := make([]segment, 0, len(chain)+2)

	root := segment{label: "Root", role: roleAncestor}
	switch {
	case cur.IsSet() && v.OnRoot():
		root.role = roleSelected
	case !hasFocus && cur.IsSet():
		root.role = roleFocus
	case !hasFocus:
		root.role = roleFocusActive
	}
	segs = append(segs, root)

	for i, h := range chain {
		s := segment{label: label(n, h), role: roleAncestor}
		if cur.Index() == i {
			s.role = roleSelected
		}
		segs = append(segs, s)
	}

	if hasFocus {
		s := segment{label: label(n, focus), role: roleFocusActive}
		if cur.IsSet() {
			s.role = roleFocus
		}
		segs = append(segs, s)
	}
	return segs
}

func label(n Namer, h galaxy.Handle) string {
	name := n.Name(h)
	if name == "" {
		name = fmt.Sprintf("#%d", h.Index())
	}
	return truncate(name, maxLabelCols)
}

// truncate shortens s to at most cols terminal columns, counting East Asian
// wide and fullwidth runes as two.
func truncate(s string, cols int) string {
	if displayWidth(s) <= cols {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runeWidth(r)
		if used+w > cols-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	b.WriteRune('…')
	return b.String()
}

func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

func renderPath(segs []segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = styleFor(s.role).Render(s.label)
	}
	return strings.Join(parts, styleSep.Render(pathSeparator))
}
