// Package supervisor exposes the RPC surface a host application embeds:
// start/stop/status for a single running daemon, config get/set, and
// git-repository detection. At most one daemon runs at a time.
package supervisor

import (
	"fmt"
	"sync"

	"github.com/autogitd/autogitd/internal/applog"
	"github.com/autogitd/autogitd/internal/config"
	"github.com/autogitd/autogitd/internal/daemon"
	"github.com/autogitd/autogitd/internal/gitlocate"
)

// Status mirrors the RPC response shape for autogit_daemon_status.
type Status struct {
	Running        bool
	RepoRoot       string
	WatchPath      string
	CommitsWritten uint64
	LastCommit     string
	LastError      string
}

type handle struct {
	repoRoot  string
	watchPath string
	d         *daemon.Daemon
	done      chan struct{}
}

// Supervisor holds the single-slot running-daemon handle. The zero value is
// ready to use; callers typically share one package-level instance, the way
// a host application holds one manager for its whole process lifetime.
type Supervisor struct {
	mu  sync.Mutex
	h   *handle
	log applog.Logger
}

// New returns an empty Supervisor.
func New() *Supervisor {
	return &Supervisor{log: applog.For("supervisor")}
}

// Start normalizes watchPathRaw, locates its enclosing git repository, and
// launches a daemon against it in a background goroutine. If a daemon is
// already running, Start returns its current status instead of starting a
// second one — mirroring the original's "return existing handle" behavior.
func (s *Supervisor) Start(watchPathRaw string) (Status, error) {
	watchPath, err := gitlocate.NormalizeWatchPath(watchPathRaw)
	if err != nil {
		return Status{}, err
	}
	repoRoot := gitlocate.FindRepoRoot(watchPath)
	if repoRoot == "" {
		return Status{}, fmt.Errorf("no git repository found from %s", watchPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.h != nil {
		return s.statusLocked(true), nil
	}

	d := daemon.New(repoRoot, watchPath)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := d.Run(); err != nil {
			s.log.WithRepo(repoRoot).Error(err, "daemon exited with error")
		}
	}()

	s.h = &handle{repoRoot: repoRoot, watchPath: watchPath, d: d, done: done}
	return s.statusLocked(true), nil
}

// Stop signals the running daemon to stop and waits for it to exit,
// returning its final status. If no daemon is running, returns a
// not-running status rather than an error.
func (s *Supervisor) Stop() Status {
	s.mu.Lock()
	h := s.h
	s.h = nil
	s.mu.Unlock()

	if h == nil {
		return Status{}
	}

	h.d.Stop()
	<-h.done

	commits, lastCommit, lastErr := h.d.State().Snapshot()
	return Status{
		Running:        false,
		RepoRoot:       h.repoRoot,
		WatchPath:      h.watchPath,
		CommitsWritten: commits,
		LastCommit:     lastCommit,
		LastError:      lastErr,
	}
}

// Status reports the current daemon's status, or a zero-value not-running
// Status if nothing is running.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.h == nil {
		return Status{}
	}
	return s.statusLocked(true)
}

// statusLocked must be called with s.mu held.
func (s *Supervisor) statusLocked(running bool) Status {
	commits, lastCommit, lastErr := s.h.d.State().Snapshot()
	return Status{
		Running:        running,
		RepoRoot:       s.h.repoRoot,
		WatchPath:      s.h.watchPath,
		CommitsWritten: commits,
		LastCommit:     lastCommit,
		LastError:      lastErr,
	}
}

// GetConfig returns the .autogit.json for repoRoot, creating it with
// defaults if it does not exist yet.
func GetConfig(repoRoot string) (*config.Config, error) {
	return config.LoadOrCreate(repoRoot)
}

// SetConfig persists cfg as repoRoot's .autogit.json. A running daemon whose
// watch path is that repo's root sees the write in its next debounced batch
// and hot-reloads the whole config from disk, so exclude, enabled, and
// interval_seconds all take effect from that batch on. A daemon watching a
// subdirectory receives no event for the root's .autogit.json and keeps its
// current config.
func SetConfig(repoRoot string, cfg *config.Config) error {
	return config.Save(repoRoot, cfg)
}

// DetectGitRepo implements the detect_git_repo RPC operation.
func DetectGitRepo(entryPath string) gitlocate.Info {
	return gitlocate.Detect(entryPath)
}
