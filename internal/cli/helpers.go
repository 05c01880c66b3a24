package cli

import (
	"fmt"
	"path/filepath"

	"github.com/autogitd/autogitd/internal/gitlocate"
)

// resolvePathArg normalizes a CLI positional path argument (defaulting to
// the current directory) and locates its enclosing git repository.
func resolvePathArg(raw string) (watchPath, repoRoot string, err error) {
	if raw == "" {
		raw = "."
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", "", err
	}
	watchPath, err = gitlocate.NormalizeWatchPath(abs)
	if err != nil {
		return "", "", err
	}
	repoRoot = gitlocate.FindRepoRoot(watchPath)
	if repoRoot == "" {
		return "", "", fmt.Errorf("no git repository found from %s", watchPath)
	}
	return watchPath, repoRoot, nil
}
