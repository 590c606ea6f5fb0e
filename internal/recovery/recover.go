// Package recovery provides panic recovery for aggregation passes and
// Flight handlers. Ensures a malformed dataset or a bad credit function
// cannot crash the embedding process.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Guard wraps a function call with panic recovery.
// If the function panics, the panic is logged with its stack trace and
// converted to an error.
func Guard(logger *slog.Logger, operation string, fn func() error) (err error) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()

	return fn()
}

// GuardValue wraps a function that returns a value and error.
// If the function panics, returns the zero value and an error.
func GuardValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			var zero T
			result = zero
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()

	return fn()
}
