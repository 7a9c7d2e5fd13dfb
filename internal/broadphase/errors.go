package broadphase

import (
	"errors"
	"fmt"

	"github.com/san-kum/broadphase/internal/geom"
	"github.com/san-kum/broadphase/internal/tree"
)

var (
	// ErrUnknownShape indicates a shape reference with no live proxy.
	ErrUnknownShape = fmt.Errorf("broadphase: unknown shape: %w", tree.ErrUnknownHandle)

	// ErrDuplicateShape indicates AddShape was called twice for one reference.
	ErrDuplicateShape = errors.New("broadphase: shape already added")

	// ErrCapacity indicates the node pool or the pair buffer hit its limit.
	ErrCapacity = tree.ErrCapacity

	ErrInvalidBox = geom.ErrInvalidBox
)
