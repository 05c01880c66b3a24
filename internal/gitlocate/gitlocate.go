// Package gitlocate finds the nearest enclosing Git repository for a given
// filesystem entry, shared by the daemon's startup path and the
// detect_git_repo operation so both agree on what "the repository" means.
package gitlocate

import (
	"fmt"
	"os"
	"path/filepath"
)

// Info is the result of locating the repository for an entry path.
type Info struct {
	IsGitRepo         bool
	RepoRoot          string
	EntryRelativePath string
}

// NormalizeWatchPath resolves raw to an absolute, canonical directory: a
// file path is replaced by its parent directory, and the result is run
// through EvalSymlinks so repo-relative comparisons elsewhere are stable.
func NormalizeWatchPath(raw string) (string, error) {
	info, err := os.Stat(raw)
	if err != nil {
		return "", fmt.Errorf("watch path does not exist: %s", raw)
	}

	dir := raw
	if !info.IsDir() {
		dir = filepath.Dir(raw)
	}

	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", err
	}
	return filepath.Abs(real)
}

// FindRepoRoot walks up from start looking for a .git entry (file or
// directory — worktrees and submodules use a .git file) at each level,
// returning "" if none is found before reaching the filesystem root.
func FindRepoRoot(start string) string {
	cursor := start
	for {
		if _, err := os.Stat(filepath.Join(cursor, ".git")); err == nil {
			return cursor
		}
		parent := filepath.Dir(cursor)
		if parent == cursor {
			return ""
		}
		cursor = parent
	}
}

// Detect implements the detect_git_repo operation: if entryPath names a
// file, the walk starts from its parent directory. entryPath need not exist
// as a literal path component under the returned root — EntryRelativePath
// is empty when entryPath equals the discovered root.
func Detect(entryPath string) Info {
	start := entryPath
	if info, err := os.Stat(entryPath); err == nil && !info.IsDir() {
		start = filepath.Dir(entryPath)
	}

	root := FindRepoRoot(start)
	if root == "" {
		return Info{IsGitRepo: false}
	}

	rel, err := filepath.Rel(root, start)
	if err != nil {
		rel = ""
	}
	if rel == "." {
		rel = ""
	}

	return Info{
		IsGitRepo:         true,
		RepoRoot:          root,
		EntryRelativePath: rel,
	}
}
