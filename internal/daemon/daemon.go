// Package daemon runs the per-repository main loop: accumulate classified
// paths from debounced filesystem batches, and commit them to the shadow
// branch once the configured interval has elapsed.
package daemon

import (
	"fmt"
	"sync"
	"time"

	"github.com/autogitd/autogitd/internal/applog"
	"github.com/autogitd/autogitd/internal/config"
	"github.com/autogitd/autogitd/internal/pathclass"
	"github.com/autogitd/autogitd/internal/retry"
	"github.com/autogitd/autogitd/internal/vcsdriver"
	"github.com/autogitd/autogitd/internal/watch"
)

// pollTimeout bounds how long the main loop waits for a batch before
// re-checking the stop signal and the commit interval — it does not gate
// commit frequency itself, config.MinInterval does.
const pollTimeout = 500 * time.Millisecond

// nowFunc supplies the Unix-seconds clock used for interval gating and commit
// timestamps; it is a variable so a test can substitute a fixed clock.
var nowFunc = func() int64 { return time.Now().Unix() }

// State is the mutex-guarded runtime state a supervisor polls for status.
type State struct {
	mu             sync.Mutex
	commitsWritten uint64
	lastCommit     string
	lastError      string
}

// RecordCommit increments the commit counter and remembers the new hash.
func (s *State) RecordCommit(hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitsWritten++
	s.lastCommit = hash
}

// SetLastError remembers the most recent failure message.
func (s *State) SetLastError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

// Snapshot returns a consistent copy of the current state.
func (s *State) Snapshot() (commitsWritten uint64, lastCommit, lastError string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitsWritten, s.lastCommit, s.lastError
}

// Daemon watches a single repository and commits classified changes to its
// shadow branch. Callers obtain one from supervisor.Start and never
// construct it directly in production code outside that package.
type Daemon struct {
	RepoRoot  string
	WatchPath string

	state   *State
	stopCh  chan struct{}
	stopped sync.Once
	log     applog.Logger
}

// New returns a Daemon ready to Run, watching watchPath for changes to be
// committed against the repository rooted at repoRoot.
func New(repoRoot, watchPath string) *Daemon {
	return &Daemon{
		RepoRoot:  repoRoot,
		WatchPath: watchPath,
		state:     &State{},
		stopCh:    make(chan struct{}),
		log:       applog.For("daemon").WithRepo(repoRoot),
	}
}

// State returns the daemon's runtime state cell.
func (d *Daemon) State() *State {
	return d.state
}

// Stop signals Run to return at the next opportunity. Safe to call more
// than once or before Run has started.
func (d *Daemon) Stop() {
	d.stopped.Do(func() { close(d.stopCh) })
}

// Run ensures the shadow branch exists, loads the repo's configuration, and
// processes debounced filesystem batches until Stop is called or the
// coalescer's channel closes. It blocks the calling goroutine.
func (d *Daemon) Run() error {
	repo := vcsdriver.NewRepo(d.RepoRoot)
	if err := repo.EnsureShadowBranch(); err != nil {
		d.state.SetLastError(err.Error())
		return err
	}

	cfg, err := config.LoadOrCreate(d.RepoRoot)
	if err != nil {
		d.state.SetLastError(err.Error())
		return err
	}

	coalescer, err := watch.New(d.WatchPath)
	if err != nil {
		err = fmt.Errorf("creating watcher: %w", err)
		d.state.SetLastError(err.Error())
		return err
	}
	defer coalescer.Close()

	d.log.Info("daemon started")

	var lastCommitTS int64
	pending := make(map[string]struct{})

	for {
		select {
		case <-d.stopCh:
			d.log.Info("daemon stopped (signal)")
			return nil

		case batch, ok := <-coalescer.Batches():
			if !ok {
				d.log.Info("daemon stopped (watcher closed)")
				return nil
			}
			if batch.ConfigTouched {
				if updated, err := config.LoadOrCreate(d.RepoRoot); err == nil {
					cfg = updated
				} else {
					d.state.SetLastError(err.Error())
					d.log.Error(err, "config reload failed, keeping previous config")
				}
			}
			for _, raw := range batch.Paths {
				if rel, ok := pathclass.Classify(d.RepoRoot, raw, cfg.Exclude); ok {
					pending[rel] = struct{}{}
				}
			}

		case <-time.After(pollTimeout):
		}

		if !cfg.Enabled {
			pending = make(map[string]struct{})
			continue
		}
		if len(pending) == 0 {
			continue
		}

		now := nowFunc()
		minInterval := int64(config.MinInterval(cfg))
		if lastCommitTS > 0 && now-lastCommitTS < minInterval {
			continue
		}

		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}

		hash, err := retry.CommitWithRetry(d.RepoRoot, func() (string, error) {
			return repo.CommitShadowBatch(paths, now)
		})
		if err != nil {
			d.state.SetLastError(err.Error())
			d.log.Error(err, "commit cycle failed")
		} else if hash != "" {
			d.state.RecordCommit(hash)
			d.log.Info("committed shadow batch")
		}

		// Always clear pending paths after an attempt, successful or not,
		// so a persistently failing batch doesn't retry forever on every
		// cycle — the next change will re-seed it.
		pending = make(map[string]struct{})
		lastCommitTS = now
	}
}
