package resilience

import "errors"

// ErrTimeout is returned when an operation exceeds its per-attempt deadline.
var ErrTimeout = errors.New("resilience: operation timed out")
