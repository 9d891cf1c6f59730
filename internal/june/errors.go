package june

import "errors"

// ErrUnknownContext is returned when a message is appended to a context id
// that was never initialized. This is a usage error, not a transient one.
var ErrUnknownContext = errors.New("june: unknown context")
