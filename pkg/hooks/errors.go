package hooks

import (
	"fmt"
)

// Common hook errors.
var (
	// ErrHookTypeEmpty is returned when a hook type is empty.
	ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")

	// ErrHookExecution is returned when a script fails or sets err.
	ErrHookExecution = fmt.Errorf("error executing hook")

	// ErrHookLoad is returned when a hook script cannot be read.
	ErrHookLoad = fmt.Errorf("failed to load hook")
)

// ErrUnsupportedHookType is returned for a type outside HookTypes.
func ErrUnsupportedHookType(hookType string) error {
	return fmt.Errorf("%w: unsupported hook type %q", ErrHookLoad, hookType)
}
