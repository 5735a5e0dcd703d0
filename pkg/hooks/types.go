package hooks

// HookType names the lifecycle point a hook runs at.
type HookType string

// Supported hook types. The values match the keys of the hooks settings block.
const (
	PostCreate HookType = "post_create"
	PostLoader HookType = "post_loader"
)

// HookTypes lists every supported type.
var HookTypes = []HookType{PostCreate, PostLoader}

// Hook is a Tengo script bound to a hook type.
type Hook struct {
	Type    HookType
	Content string
	// Source is the file the script was read from, if any.
	Source string
}

// HookContext is exposed to scripts as global variables.
type HookContext struct {
	InstanceDir string
	Version     string
	Loader      string
	IsServer    bool
	Vars        map[string]interface{}
}
