package models

import "errors"

var (
	// ErrDataUnavailable means a catalog or store could not be read. It is
	// distinct from an empty result.
	ErrDataUnavailable = errors.New("data unavailable")
	ErrNotFound        = errors.New("not found")
)
