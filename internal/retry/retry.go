// Package retry implements the lock-wait and commit-retry budgets used
// around a shadow-branch commit attempt, and the append-only error log
// those attempts fall back to when they're exhausted.
package retry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Budgets per spec.md §4.4. The two are independent: a persistent foreign
// lock is reported once and the batch is discarded, never consuming the
// commit-retry budget.
const (
	LockMaxRetries    = 5
	LockRetrySleep    = 2 * time.Second
	CommitMaxRetries  = 3
	CommitRetrySleep  = 10 * time.Second
	autogitLogFile    = ".autogit.log"
)

// sleepFunc is replaced in tests to avoid real delays.
var sleepFunc = time.Sleep

// nowFunc is replaced in tests for deterministic timestamps.
var nowFunc = func() int64 { return time.Now().Unix() }

// WaitForForeignLock polls for repoRoot/.git/index.lock to disappear, up to
// LockMaxRetries attempts spaced LockRetrySleep apart. Returns true once the
// lock file is gone (including if it was never there), false if it
// persisted through every attempt.
func WaitForForeignLock(repoRoot string) bool {
	lockPath := filepath.Join(repoRoot, ".git", "index.lock")
	for i := 0; i < LockMaxRetries; i++ {
		if _, err := os.Stat(lockPath); os.IsNotExist(err) {
			return true
		}
		sleepFunc(LockRetrySleep)
	}
	_, err := os.Stat(lockPath)
	return os.IsNotExist(err)
}

// CommitWithRetry waits out any existing foreign lock, then calls attempt up
// to CommitMaxRetries times with CommitRetrySleep between failures, logging
// each failure (including the foreign-lock case) to .autogit.log. The
// returned commit hash may be empty if attempt reports "no net change"
// (attempt's own convention, passed through unchanged).
func CommitWithRetry(repoRoot string, attempt func() (string, error)) (string, error) {
	lockPath := filepath.Join(repoRoot, ".git", "index.lock")
	if _, err := os.Stat(lockPath); err == nil {
		if !WaitForForeignLock(repoRoot) {
			msg := "git index.lock persists after retries; skipping this commit batch"
			AppendError(repoRoot, msg)
			return "", fmt.Errorf("%s", msg)
		}
	}

	var lastErr error
	for i := 0; i < CommitMaxRetries; i++ {
		hash, err := attempt()
		if err == nil {
			return hash, nil
		}
		lastErr = err
		AppendError(repoRoot, fmt.Sprintf("commit attempt %d/%d failed: %v", i+1, CommitMaxRetries, err))
		if i+1 < CommitMaxRetries {
			sleepFunc(CommitRetrySleep)
		}
	}
	return "", lastErr
}

// AppendError appends a single line to repoRoot/.autogit.log in the fixed
// format "[<unix_seconds>] ERROR: <message>\n". Failures to open or write the
// log file are swallowed — logging must never be the reason a commit cycle
// fails.
func AppendError(repoRoot, message string) {
	path := filepath.Join(repoRoot, autogitLogFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	line := fmt.Sprintf("[%d] ERROR: %s\n", nowFunc(), message)
	_, _ = f.WriteString(line)
}
