package flight

import "errors"

var (
	// ErrUnknownView is returned for tickets or descriptors naming a view
	// the server does not stream.
	ErrUnknownView = errors.New("unknown view")
)
