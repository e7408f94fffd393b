package resourcepack

import "github.com/pkg/errors"

// Error kinds. Everything returned by a Source or by the render pipeline
// wraps one of these, so callers can branch with errors.Is.
var (
	ErrNotFound          = errors.New("definition not found")
	ErrMalformed         = errors.New("malformed definition")
	ErrUnsupported       = errors.New("unsupported feature")
	ErrNoMatchingVariant = errors.New("no matching variant")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrCycle             = errors.New("reference cycle")
)
