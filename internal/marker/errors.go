package marker

import "errors"

// ErrLineOutOfRange is returned by Lines for an index outside the slice.
var ErrLineOutOfRange = errors.New("line out of range")
