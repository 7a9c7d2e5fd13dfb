package tree

import (
	"errors"
	"fmt"

	"github.com/san-kum/broadphase/internal/geom"
)

// Domain errors for tree operations.
var (
	// ErrUnknownHandle indicates a handle that is not a live leaf.
	ErrUnknownHandle = errors.New("tree: unknown handle")

	// ErrCapacity indicates the node pool cannot grow past Options.MaxNodes.
	ErrCapacity = errors.New("tree: node pool capacity exhausted")

	// ErrInvalidBox is returned for boxes with non-finite or inverted bounds.
	ErrInvalidBox = geom.ErrInvalidBox
)

// HandleError wraps an error with the operation and handle that caused it.
type HandleError struct {
	Op     string
	Handle geom.Handle
	Err    error
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("tree: %s handle %d: %v", e.Op, e.Handle, e.Err)
}

func (e *HandleError) Unwrap() error {
	return e.Err
}
