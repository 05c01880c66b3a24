// Package vcsdriver wraps the git plumbing commands used to record a batch
// of changed paths as a single commit on the private shadow branch, without
// touching the user's index, working tree, or history.
package vcsdriver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// ShadowBranch is the short name of the private tracking branch.
	ShadowBranch = "autogit/tracking"
	// ShadowRef is the fully-qualified ref updated by every commit batch.
	ShadowRef = "refs/heads/" + ShadowBranch
	// IndexPath is the private index used instead of the user's .git/index,
	// so staging for the shadow branch never disturbs what the user has
	// staged for their own next commit.
	IndexPath = ".git/autogit-index"

	guardMarker = "# autogit-guard"
	guardBody   = `# autogit-guard — never push shadow branches
while IFS=' ' read -r local_ref _local_sha _remote_ref _remote_sha; do
  case "$local_ref" in
    refs/heads/autogit/*)
      echo "ERROR: autogit shadow branches are LOCAL ONLY. Refusing to push: $local_ref" >&2
      exit 1
      ;;
  esac
done
`
)

// Retry constants for transient git failures (index/ref contention from a
// concurrent git invocation, not a stale lock file — that case is handled
// one level up by the retry/lock manager).
const (
	retryInitialDelay = 200 * time.Millisecond
	retryMaxAttempts  = 6
	retryMultiplier   = 2
)

// transientPatterns are error substrings that indicate a retryable git failure.
var transientPatterns = []string{
	"index file open failed",
	"index.lock",
	"cannot lock ref",
}

func isTransient(errMsg string) bool {
	for _, p := range transientPatterns {
		if strings.Contains(errMsg, p) {
			return true
		}
	}
	return false
}

// Repo wraps git operations rooted at a single repository directory.
type Repo struct {
	Dir string
}

// NewRepo returns a Repo rooted at dir.
func NewRepo(dir string) *Repo {
	return &Repo{Dir: dir}
}

// sleepFunc is the function used between retries; it is a variable so a test
// can substitute a non-blocking one.
var sleepFunc = time.Sleep

// run executes git with the given args and environment additions, retrying
// transient failures with exponential backoff.
func (r *Repo) run(env []string, args ...string) (string, error) {
	delay := retryInitialDelay
	for attempt := 0; attempt < retryMaxAttempts; attempt++ {
		cmd := exec.Command("git", args...)
		cmd.Dir = r.Dir
		if len(env) > 0 {
			cmd.Env = append(os.Environ(), env...)
		}
		out, err := cmd.CombinedOutput()
		if err == nil {
			return strings.TrimSpace(string(out)), nil
		}
		errMsg := strings.TrimSpace(string(out))
		if !isTransient(errMsg) || attempt == retryMaxAttempts-1 {
			return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), errMsg, err)
		}
		sleepFunc(delay)
		delay *= retryMultiplier
	}
	return "", nil // unreachable — loop always returns
}

// runQuiet runs git and reports only success, swallowing the error. Used for
// existence checks where a non-zero exit is an expected outcome, not a
// failure worth retrying or reporting.
func (r *Repo) runQuiet(args ...string) bool {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	return cmd.Run() == nil
}

// ShadowBranchExists reports whether refs/heads/autogit/tracking exists.
func (r *Repo) ShadowBranchExists() bool {
	return r.runQuiet("show-ref", "--verify", "--quiet", ShadowRef)
}

// EnsureShadowBranch creates the shadow branch at HEAD if it doesn't already
// exist, then (re-)installs the pre-push guard — the guard install is
// idempotent and runs on every call, matching the original's "install on
// every init" behavior.
func (r *Repo) EnsureShadowBranch() error {
	if !r.ShadowBranchExists() {
		if _, err := r.run(nil, "branch", ShadowBranch, "HEAD"); err != nil {
			return err
		}
	}
	return r.InstallPrePushHook()
}

// InstallPrePushHook merges the autogit never-push guard into
// .git/hooks/pre-push. If a hook already exists, the guard is appended only
// when the marker comment is not already present, making repeated calls a
// no-op. Known limitation: if the existing hook consumes stdin before the
// guard's `read` loop runs, the guard will read nothing and let the push
// through — fixing that would require parsing the existing hook's shell,
// which is out of scope.
func (r *Repo) InstallPrePushHook() error {
	hooksDir := filepath.Join(r.Dir, ".git", "hooks")
	hookPath := filepath.Join(hooksDir, "pre-push")

	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return fmt.Errorf("create hooks dir: %w", err)
	}

	existing := ""
	if data, err := os.ReadFile(hookPath); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read pre-push hook: %w", err)
	}

	if strings.Contains(existing, guardMarker) {
		return nil
	}

	var newContent string
	if existing == "" {
		newContent = "#!/bin/sh\n" + guardBody
	} else {
		newContent = existing + "\n" + guardBody
	}

	if err := os.WriteFile(hookPath, []byte(newContent), 0755); err != nil {
		return fmt.Errorf("write pre-push hook: %w", err)
	}
	return os.Chmod(hookPath, 0755)
}

// CommitShadowBatch stages the given repo-relative changed paths into the
// private index, builds a tree from the shadow branch plus those changes,
// and — if the resulting tree differs from the shadow branch's current
// tree — commits it with the fixed autogit identity and advances the shadow
// ref via a compare-and-swap update-ref (old value = the commit's sole
// parent), so a concurrent writer is detected rather than silently
// overwritten. Returns the new commit hash, or "" if there was no net
// change to commit.
func (r *Repo) CommitShadowBatch(changedPaths []string, unixSeconds int64) (string, error) {
	if err := r.EnsureShadowBranch(); err != nil {
		return "", err
	}

	indexEnv := []string{"GIT_INDEX_FILE=" + filepath.Join(r.Dir, IndexPath)}

	parentCommit, err := r.run(nil, "rev-parse", ShadowBranch)
	if err != nil {
		return "", err
	}
	if _, err := r.run(indexEnv, "read-tree", ShadowBranch); err != nil {
		return "", err
	}

	for _, path := range changedPaths {
		if _, err := r.run(indexEnv, "add", "-A", "--", path); err != nil {
			return "", err
		}
	}

	treeHash, err := r.run(indexEnv, "write-tree")
	if err != nil {
		return "", err
	}
	parentTree, err := r.run(nil, "rev-parse", ShadowBranch+"^{tree}")
	if err != nil {
		return "", err
	}

	if treeHash == parentTree {
		return "", nil
	}

	commitMessage := fmt.Sprintf("autogit: %d", unixSeconds)
	authorDate := fmt.Sprintf("%d +0000", unixSeconds)
	commitEnv := []string{
		"GIT_AUTHOR_NAME=autogit",
		"GIT_AUTHOR_EMAIL=autogit@local",
		"GIT_COMMITTER_NAME=autogit",
		"GIT_COMMITTER_EMAIL=autogit@local",
		"GIT_AUTHOR_DATE=" + authorDate,
		"GIT_COMMITTER_DATE=" + authorDate,
	}
	commitHash, err := r.run(commitEnv, "commit-tree", treeHash, "-p", parentCommit, "-m", commitMessage)
	if err != nil {
		return "", err
	}

	if _, err := r.run(nil, "update-ref", ShadowRef, commitHash, parentCommit); err != nil {
		return "", err
	}

	return commitHash, nil
}
