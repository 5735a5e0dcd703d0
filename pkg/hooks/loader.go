package hooks

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glorpus-work/lodestone/pkg/errutils"
)

// HookFileExtension is the extension of hook scripts.
const HookFileExtension = ".tengo"

// LoadHooks registers the scripts named in paths, keyed by hook type name.
// Relative paths are resolved against baseDir; empty entries are skipped.
func LoadHooks(manager HookManager, baseDir string, paths map[string]string) error {
	for name, path := range paths {
		if path == "" {
			continue
		}
		hookType := HookType(name)
		if !isSupported(hookType) {
			return ErrUnsupportedHookType(name)
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: reading %s hook %s: %w", ErrHookLoad, name, path, err)
		}
		if err := manager.AddHook(Hook{Type: hookType, Content: string(content), Source: path}); err != nil {
			return errutils.Wrapf(err, "error adding hook %s", name)
		}
	}
	return nil
}

func isSupported(hookType HookType) bool {
	for _, t := range HookTypes {
		if t == hookType {
			return true
		}
	}
	return false
}

// HookTemplate generates a starter script for a hook type.
func HookTemplate(hookType HookType) string {
	const vars = `// Available variables:
// - instance_dir: string - directory of the instance or server
// - version: string - Minecraft version id
// - loader: string - installed mod loader, "Vanilla" when none
// - is_server: bool - true for server directories
//
// Assign a string or error(...) to err to fail the operation.
`
	switch hookType {
	case PostCreate:
		return `// post_create hook
// Runs after an instance or server has been assembled.
` + vars + `
fmt := import("fmt")

/*
if is_server && version == "1.7.10" {
    err = "refusing to create old servers"
}
*/
fmt.println("created ", instance_dir)
`
	case PostLoader:
		return `// post_loader hook
// Runs after a mod loader has been installed.
` + vars + `
text := import("text")

/*
if text.has_prefix(loader, "Forge") && !is_server {
    err = error("forge clients are not allowed here")
}
*/
`
	default:
		return "// Unknown hook type: " + string(hookType)
	}
}
