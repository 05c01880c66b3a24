// Package pathclass decides whether a filesystem path touched inside a
// watched repository is eligible for staging into the shadow branch, and
// translates it into the repo-relative form the VCS driver expects.
package pathclass

import (
	"path/filepath"
	"strings"
)

// blacklist is intrinsic and not user-configurable: it exists to stop
// build-tool churn from turning into a commit storm, independent of
// whatever the user has or hasn't added to their own exclude list.
var blacklist = map[string]bool{
	".git":         true,
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"__pycache__":  true,
}

// Classify translates raw (absolute or relative) into a repo-relative path
// accepted for staging, applying the rules in order: repo-relative
// translation, empty-path rejection, the intrinsic blacklist, editor
// droppings, and the user's exclude patterns. ok is false when raw should
// not be staged.
func Classify(repoRoot, raw string, exclude []string) (rel string, ok bool) {
	rel, ok = toRepoRelative(repoRoot, raw)
	if !ok {
		return "", false
	}

	rel = filepath.Clean(rel)
	if rel == "." || rel == "" {
		return "", false
	}

	if hasBlacklistedComponent(rel) {
		return "", false
	}

	base := filepath.Base(rel)
	if base == ".DS_Store" || strings.HasSuffix(base, ".pyc") || strings.HasSuffix(base, ".log") {
		return "", false
	}

	if matchesExclude(rel, exclude) {
		return "", false
	}

	return rel, true
}

// toRepoRelative implements rule 1: keep relative paths as-is, strip the
// repo-root prefix from absolute paths, and fall back to canonicalizing
// both sides before giving up.
func toRepoRelative(repoRoot, raw string) (string, bool) {
	if !filepath.IsAbs(raw) {
		return raw, true
	}

	if rel, err := filepath.Rel(repoRoot, raw); err == nil && !strings.HasPrefix(rel, "..") {
		return rel, true
	}

	realRoot, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		return "", false
	}
	realRaw, err := filepath.EvalSymlinks(raw)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(realRoot, realRaw)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return rel, true
}

// hasBlacklistedComponent reports whether any normal path component of rel
// matches the intrinsic blacklist.
func hasBlacklistedComponent(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if blacklist[part] {
			return true
		}
	}
	return false
}

// matchesExclude implements rule 5: exact equality, prefix match of
// "pattern/", or any normal component equal to the pattern string.
// Separators are normalized to forward slashes before comparison.
func matchesExclude(rel string, exclude []string) bool {
	normalized := filepath.ToSlash(rel)
	components := strings.Split(normalized, "/")

	for _, raw := range exclude {
		pattern := filepath.ToSlash(strings.TrimSpace(raw))
		if pattern == "" {
			continue
		}

		if normalized == pattern || strings.HasPrefix(normalized, pattern+"/") {
			return true
		}

		for _, part := range components {
			if part == pattern {
				return true
			}
		}
	}

	return false
}
