package hooks

import "context"

// HookManager defines the interface for managing hooks.
type HookManager interface {
	// Execute runs the hook of hookType, if one is registered.
	Execute(ctx context.Context, hookType HookType, hc HookContext) error

	// AddHook adds or replaces a hook
	AddHook(hook Hook) error

	// RemoveHook removes the hook of the specified type
	RemoveHook(hookType HookType) error

	// HasHook checks if a hook of the specified type exists
	HasHook(hookType HookType) bool
}
