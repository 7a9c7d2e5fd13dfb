package geom

import "errors"

// ErrInvalidBox indicates a box with non-finite or inverted bounds.
var ErrInvalidBox = errors.New("geom: invalid box (NaN, Inf or min > max)")
