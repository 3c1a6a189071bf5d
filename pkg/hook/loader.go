package hook

import (
	"os"

	"github.com/depotkit/depotkit/pkg/errors"
)

// LoadScriptFile reads a hook script from disk and registers it with the
// manager under the given type.
func LoadScriptFile(manager HookManager, hookType HookType, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ErrHookLoad, "%s: %v", path, err)
	}
	return manager.AddHook(Hook{Type: hookType, Content: string(content)})
}
