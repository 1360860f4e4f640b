package widget

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
	rcron "github.com/robfig/cron/v3"

	"github.com/kangchainx/puredo/internal/snapshot"
)

// DefaultRefreshSpec is the reader's fallback schedule.
const DefaultRefreshSpec = "@every 1m"

// RenderFunc receives each decoded snapshot refresh.
type RenderFunc func(snap snapshot.Snapshot)

// Reader is the widget-side consumer of the published snapshot. It never
// writes shared state: it decodes the blob on its own cron schedule and
// again whenever the shared directory reports a change. A missing blob or
// a failed decode renders as an empty list, never as an error.
type Reader struct {
	blobs    snapshot.BlobStore
	watchDir string
	spec     string
	render   RenderFunc

	mu      sync.Mutex
	last    snapshot.Snapshot
	cron    *rcron.Cron
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

// NewReader builds a reader over the shared blob store. watchDir may be
// empty, in which case only the schedule drives refreshes.
func NewReader(blobs snapshot.BlobStore, watchDir, refreshSpec string, render RenderFunc) *Reader {
	if refreshSpec == "" {
		refreshSpec = DefaultRefreshSpec
	}
	return &Reader{
		blobs:    blobs,
		watchDir: watchDir,
		spec:     refreshSpec,
		render:   render,
		last:     snapshot.Snapshot{Tasks: []snapshot.Item{}},
	}
}

func (r *Reader) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.cron = rcron.New()
	if _, err := r.cron.AddFunc(r.spec, r.Refresh); err != nil {
		cancel()
		return fmt.Errorf("register refresh schedule %q: %w", r.spec, err)
	}
	r.cron.Start()

	// The publish rename shows up as a directory event; losing the watch
	// only delays a refresh until the next scheduled one.
	if r.watchDir != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Printf("[widget] watch unavailable: %v", err)
		} else if err := watcher.Add(r.watchDir); err != nil {
			log.Printf("[widget] watch %s: %v", r.watchDir, err)
			watcher.Close()
		} else {
			r.watcher = watcher
			go r.watchLoop(runCtx)
		}
	}

	r.Refresh()
	log.Printf("[widget] reader started (refresh %q)", r.spec)
	return nil
}

func (r *Reader) watchLoop(ctx context.Context) {
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				r.Refresh()
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[widget] watch error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}

// Refresh decodes the current blob and hands it to the render callback.
func (r *Reader) Refresh() {
	data, ok, err := r.blobs.Get(snapshot.Key)
	if err != nil {
		log.Printf("[widget] read snapshot: %v", err)
		ok = false
	}

	snap := snapshot.Snapshot{Tasks: []snapshot.Item{}}
	if ok {
		snap = snapshot.Decode(data)
	}

	r.mu.Lock()
	r.last = snap
	r.mu.Unlock()

	if r.render != nil {
		r.render(snap)
	}
}

// Current returns the most recently decoded snapshot.
func (r *Reader) Current() snapshot.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Reader) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	if r.watcher != nil {
		_ = r.watcher.Close()
	}
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	log.Printf("[widget] reader stopped")
}
