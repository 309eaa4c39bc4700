package galaxy

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a handle that does not resolve to a live entity.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidParent reports a spawn whose parent handle does not resolve.
	ErrInvalidParent = errors.New("invalid parent")
	// ErrInvalidAttachment reports a spawn without an attachment target or
	// anchored at a non-finite position.
	ErrInvalidAttachment = errors.New("missing attachment")
	// ErrInvalidRelation reports an orbit attachment or child spec without a relation.
	ErrInvalidRelation = errors.New("missing relation")
	// ErrCycle reports a parent walk that did not reach a root anchor.
	ErrCycle = errors.New("attachment cycle")
)

// SpawnError describes a rejected spawn. Nothing was created when a
// SpawnError is returned.
type SpawnError struct {
	Name   string
	Parent Handle
	Err    error
}

func (e *SpawnError) Error() string {
	if !e.Parent.IsZero() {
		return fmt.Sprintf("spawn %q under %d: %v", e.Name, e.Parent, e.Err)
	}
	return fmt.Sprintf("spawn %q: %v", e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
