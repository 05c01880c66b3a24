// Package watch turns a stream of raw filesystem events inside a working
// directory into debounced batches the daemon loop can act on once every
// few seconds instead of once per keystroke.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/autogitd/autogitd/internal/config"
)

// DebounceWindow is the fixed delay between the last raw event in a burst
// and the batch being delivered.
const DebounceWindow = 5 * time.Second

// intrinsicDirBlacklist mirrors pathclass's blacklist for the purpose of
// deciding which directories are worth spending an inotify watch on — the
// watcher never descends into them, so events from inside never arrive in
// the first place.
var intrinsicDirBlacklist = map[string]bool{
	".git":         true,
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"__pycache__":  true,
}

// Batch is one coalesced group of raw filesystem events.
type Batch struct {
	// ConfigTouched is true if .autogit.json itself appeared among the
	// raw events in this batch.
	ConfigTouched bool
	// Paths holds the raw (absolute) paths touched, deduplicated.
	Paths []string
}

// Coalescer watches repoRoot recursively and emits debounced Batches.
type Coalescer struct {
	repoRoot  string
	watcher   *fsnotify.Watcher
	out       chan Batch
	done      chan struct{}
	closeOnce sync.Once
}

// New starts watching repoRoot recursively (skipping blacklisted
// directories) and returns a Coalescer delivering batches on Batches().
func New(repoRoot string) (*Coalescer, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	c := &Coalescer{
		repoRoot: repoRoot,
		watcher:  w,
		out:      make(chan Batch, 1),
		done:     make(chan struct{}),
	}

	if err := c.addRecursive(repoRoot); err != nil {
		_ = w.Close()
		return nil, err
	}

	go c.loop()
	return c, nil
}

// Batches returns the channel of debounced batches. It is closed when
// Close is called or the underlying watcher fails.
func (c *Coalescer) Batches() <-chan Batch {
	return c.out
}

// Close stops the watcher and its debounce goroutine, closing Batches().
func (c *Coalescer) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return c.watcher.Close()
}

// addRecursive walks dir and adds every subdirectory to the watcher, except
// ones whose own name is in the intrinsic blacklist — matching pathclass's
// rule that blacklisted trees are never eligible for staging, so watching
// inside them would only cost inotify descriptors for nothing.
func (c *Coalescer) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && intrinsicDirBlacklist[d.Name()] {
			return filepath.SkipDir
		}
		return c.watcher.Add(path)
	})
}

func (c *Coalescer) loop() {
	defer close(c.out)

	configPath := filepath.Join(c.repoRoot, config.FileName)
	seen := make(map[string]struct{})
	configTouched := false
	var timer *time.Timer

	flush := func() {
		if len(seen) == 0 && !configTouched {
			return
		}
		paths := make([]string, 0, len(seen))
		for p := range seen {
			paths = append(paths, p)
		}
		batch := Batch{ConfigTouched: configTouched, Paths: paths}
		seen = make(map[string]struct{})
		configTouched = false
		select {
		case c.out <- batch:
		case <-c.done:
		}
	}

	for {
		select {
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if !intrinsicDirBlacklist[filepath.Base(ev.Name)] {
						_ = c.addRecursive(ev.Name)
					}
				}
			}

			if ev.Name == configPath {
				configTouched = true
			}
			seen[ev.Name] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(DebounceWindow)
			} else {
				timer.Reset(DebounceWindow)
			}

		case <-timerChan(timer):
			timer = nil
			flush()

		case _, ok := <-c.watcher.Errors:
			if !ok {
				return
			}

		case <-c.done:
			return
		}
	}
}

func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
