package hooks

import (
	"context"
	"sync"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/errutils"
)

// DefaultHookManager runs hooks through a TengoExecutor and remembers which
// file each script came from so failures name it.
type DefaultHookManager struct {
	executor *TengoExecutor

	mu      sync.RWMutex
	sources map[HookType]string
}

var _ HookManager = (*DefaultHookManager)(nil)

// NewHookManager creates a manager with no hooks.
func NewHookManager() *DefaultHookManager {
	return &DefaultHookManager{
		executor: NewTengoExecutor(),
		sources:  make(map[HookType]string),
	}
}

// Execute runs the hook of hookType for an instance or server. Missing hooks
// are a no-op.
func (m *DefaultHookManager) Execute(ctx context.Context, hookType HookType, hc HookContext) error {
	if !m.HasHook(hookType) {
		return nil
	}
	source := m.Source(hookType)
	logger.Debug("running hook", logger.Fields{"hook": string(hookType), "instance": hc.InstanceDir, "source": source, "server": hc.IsServer})
	if err := m.executor.Execute(ctx, hookType, hc); err != nil {
		if source != "" {
			return errutils.Wrapf(err, "hook script %s", source)
		}
		return err
	}
	return nil
}

// AddHook adds or replaces the hook of hook.Type.
func (m *DefaultHookManager) AddHook(hook Hook) error {
	if hook.Type == "" {
		return ErrHookTypeEmpty
	}
	m.executor.AddScript(hook.Type, hook.Content)

	m.mu.Lock()
	defer m.mu.Unlock()
	if hook.Source == "" {
		delete(m.sources, hook.Type)
	} else {
		m.sources[hook.Type] = hook.Source
	}
	return nil
}

// RemoveHook removes the hook of hookType.
func (m *DefaultHookManager) RemoveHook(hookType HookType) error {
	if hookType == "" {
		return ErrHookTypeEmpty
	}
	m.executor.RemoveScript(hookType)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sources, hookType)
	return nil
}

// HasHook reports whether a hook of hookType is registered.
func (m *DefaultHookManager) HasHook(hookType HookType) bool {
	return m.executor.HasScript(hookType)
}

// Source returns the file the hook of hookType was loaded from, or "" for
// inline scripts.
func (m *DefaultHookManager) Source(hookType HookType) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sources[hookType]
}
