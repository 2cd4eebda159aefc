// Package watch implements the source-tree watcher: a single fsnotify
// producer feeds a single-threaded debouncing processor, which fans out
// into the cache updater. Paths are classified into collage, playlist, or
// release events by their position under music_source_dir, and each
// classified event is dispatched to the matching *updater.Updater method.
//
// A filesystem move is not modeled as a single combined event: fsnotify
// delivers it as two independent raw events — a Rename on the old path
// and a Create on the new one. A Rename is treated as the
// release/collage/playlist in question disappearing (the evict path), and
// the Create arriving for the new path naturally triggers the refresh
// path, giving the same net cache effect without a synthesized "moved"
// event type.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	l "github.com/sirupsen/logrus"

	"github.com/azuline/rose-go/internal/config"
	"github.com/azuline/rose-go/internal/updater"
)

var log = l.WithFields(l.Fields{"component": "watch"})

// debounceWindow is the per-key coalescing window §5 names: events for the
// same entity within this window are collapsed into one.
const debounceWindow = 200 * time.Millisecond

// releaseDelay is how long a release event sits before its handler runs,
// so that a burst of file writes across one release directory (tags,
// cover art, sidecar) settles before the cache update reads it.
const releaseDelay = 2 * time.Second

type eventKind int

const (
	kindRelease eventKind = iota
	kindCollage
	kindPlaylist
)

type opKind int

const (
	opCreated opKind = iota
	opModified
	opRemoved
)

// event is the watcher's own normalized notification, decoupled from
// fsnotify.Event's raw Op bitmask.
type event struct {
	kind eventKind
	op   opKind
	name string // release directory name, collage name, or playlist name
}

func (e event) debounceKey() string {
	return fmt.Sprintf("%d:%s", e.kind, e.name)
}

// Watcher watches a music source directory for changes and keeps the cache
// in sync via u. Zero value is not usable; construct with New.
type Watcher struct {
	Updater *updater.Updater
	Config  *config.Config

	fsw    *fsnotify.Watcher
	events chan event

	mu       sync.Mutex
	debounce map[string]time.Time
}

// New creates a Watcher bound to u and cfg.MusicSourceDir. It does not
// start watching until Run is called.
func New(u *updater.Updater, cfg *config.Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		Updater:  u,
		Config:   cfg,
		fsw:      fsw,
		events:   make(chan event, 256),
		debounce: make(map[string]time.Time),
	}, nil
}

// Run adds the source tree to the fsnotify watch list and blocks, running
// the producer and processor, until ctx is cancelled. It always returns
// nil on clean shutdown (the SIGTERM case §5 requires); a non-nil error
// means the initial watch setup failed.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addRecursive(w.Config.MusicSourceDir); err != nil {
		return err
	}

	produceDone := make(chan struct{})
	go func() {
		defer close(produceDone)
		w.produce(ctx)
	}()

	w.process(ctx)
	<-produceDone
	w.fsw.Close()
	log.Info("watcher stopped")
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				log.WithError(err).WithField("path", path).Warn("failed to watch directory")
			}
		}
		return nil
	})
}

// produce is the single fsnotify consumer: it classifies raw events,
// extends the watch list to newly created directories so recursive watches
// stay complete, and hands normalized events to the processor.
func (w *Watcher) produce(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fe, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.trackNewDirectory(fe)
			e, ok := classify(w.Config.MusicSourceDir, fe.Name)
			if !ok {
				continue
			}
			e.op = opFor(fe.Op)
			select {
			case w.events <- e:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.WithError(err).Error("fsnotify error")
		}
	}
}

func (w *Watcher) trackNewDirectory(fe fsnotify.Event) {
	if !fe.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(fe.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(fe.Name); err != nil {
		log.WithError(err).WithField("path", fe.Name).Warn("failed to watch new directory")
	}
}

// process is the single-threaded debouncing event processor of §5: it owns
// the only decision of whether/when a handler runs, but the handlers
// themselves execute concurrently (the updater's own per-release locking
// keeps that safe).
func (w *Watcher) process(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-w.events:
			if !ok {
				return
			}
			if w.debounced(e) {
				continue
			}
			if e.kind == kindRelease {
				ev := e
				time.AfterFunc(releaseDelay, func() { w.dispatch(ev) })
			} else {
				go w.dispatch(e)
			}
		}
	}
}

func (w *Watcher) debounced(e event) bool {
	key := e.debounceKey()
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()
	if last, ok := w.debounce[key]; ok && now.Sub(last) < debounceWindow {
		return true
	}
	w.debounce[key] = now
	return false
}

func (w *Watcher) dispatch(e event) {
	switch e.kind {
	case kindRelease:
		w.dispatchRelease(e.op, e.name)
	case kindCollage:
		w.dispatchCollage(e.op, e.name)
	case kindPlaylist:
		w.dispatchPlaylist(e.op, e.name)
	}
}

func (w *Watcher) dispatchRelease(op opKind, name string) {
	dir := filepath.Join(w.Config.MusicSourceDir, name)
	switch op {
	case opCreated, opModified:
		if err := w.Updater.UpdateReleases([]string{dir}, false); err != nil {
			log.WithError(err).WithField("release", name).Error("release update failed")
		}
	case opRemoved:
		if err := w.Updater.EvictNonexistentReleases(); err != nil {
			log.WithError(err).Error("evict releases failed")
		}
	}
}

func (w *Watcher) dispatchCollage(op opKind, name string) {
	switch op {
	case opCreated, opModified:
		if err := w.Updater.RefreshCollage(name); err != nil {
			log.WithError(err).WithField("collage", name).Error("collage refresh failed")
		}
	case opRemoved:
		if err := w.Updater.EvictNonexistentCollages(); err != nil {
			log.WithError(err).Error("evict collages failed")
		}
	}
}

func (w *Watcher) dispatchPlaylist(op opKind, name string) {
	switch op {
	case opCreated, opModified:
		if err := w.Updater.RefreshPlaylist(name); err != nil {
			log.WithError(err).WithField("playlist", name).Error("playlist refresh failed")
		}
	case opRemoved:
		if err := w.Updater.EvictNonexistentPlaylists(); err != nil {
			log.WithError(err).Error("evict playlists failed")
		}
	}
}

func opFor(op fsnotify.Op) opKind {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return opRemoved
	case op.Has(fsnotify.Create):
		return opCreated
	default:
		return opModified
	}
}

// classify routes a raw fsnotify path into a release, collage, or playlist
// event by prefix. Paths outside the source tree, or the source tree's own
// root, classify as not-ok.
func classify(sourceDir, path string) (event, bool) {
	rel, err := filepath.Rel(sourceDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return event{}, false
	}
	rel = filepath.ToSlash(rel)

	switch {
	case strings.HasPrefix(rel, "!collages/"):
		if !strings.HasSuffix(rel, ".toml") {
			return event{}, false
		}
		name := strings.TrimSuffix(strings.TrimPrefix(rel, "!collages/"), ".toml")
		return event{kind: kindCollage, name: name}, true
	case strings.HasPrefix(rel, "!playlists/"):
		if !strings.HasSuffix(rel, ".toml") {
			return event{}, false
		}
		name := strings.TrimSuffix(strings.TrimPrefix(rel, "!playlists/"), ".toml")
		return event{kind: kindPlaylist, name: name}, true
	default:
		segments := strings.SplitN(rel, "/", 2)
		if segments[0] == "" || segments[0] == ".trash" {
			return event{}, false
		}
		return event{kind: kindRelease, name: segments[0]}, true
	}
}
