package provider

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gofastercloud/attackgraph/pkg/logging"
	"github.com/gofastercloud/attackgraph/pkg/metrics"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
)

// debounce absorbs the event bursts editors and atomic-rename writers
// produce for a single logical file change.
const debounce = 250 * time.Millisecond

// Refresher re-fetches the feed and republishes the snapshot, either on a
// timer, on filesystem changes, or both. A failed refresh keeps the
// previous snapshot published.
type Refresher struct {
	provider  Provider
	handle    *snapshot.Handle
	log       logging.Logger
	reg       *metrics.Registry
	interval  time.Duration
	watchPath string
}

// NewRefresher wires a refresher. interval 0 disables the timer;
// watchPath "" disables filesystem watching. logger may be nil.
func NewRefresher(p Provider, h *snapshot.Handle, log logging.Logger, reg *metrics.Registry, interval time.Duration, watchPath string) *Refresher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Refresher{
		provider:  p,
		handle:    h,
		log:       log.With(logging.Component("refresher")),
		reg:       reg,
		interval:  interval,
		watchPath: watchPath,
	}
}

// Refresh fetches the feed once and publishes the rebuilt snapshot. On
// any error the currently published snapshot stays in place.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()
	timer := logging.StartTimer(r.log, "feed refresh",
		logging.String("source", r.provider.Name()))

	feed, err := r.provider.Fetch(ctx)
	if err == nil {
		var snap *snapshot.Snapshot
		if snap, err = snapshot.Build(feed); err == nil {
			r.handle.Publish(snap)
			if r.reg != nil {
				r.reg.RecordRefresh("ok", time.Since(start))
			}
			PublishSnapshotStats(r.reg, snap)
			r.log.Info("snapshot published",
				logging.SnapshotID(snap.ID),
				logging.Count("entities", snap.Store.EntityCount()),
				logging.Count("relationships", snap.Index.EdgeCount()))
			timer.End()
			return nil
		}
	}

	if r.reg != nil {
		r.reg.RecordRefresh("error", time.Since(start))
	}
	timer.EndError(err)
	return err
}

// PublishSnapshotStats exposes the served snapshot's sizes as gauges.
// Called on every successful refresh, and once at startup so the gauges
// reflect the initial snapshot even when refreshing is disabled.
func PublishSnapshotStats(reg *metrics.Registry, snap *snapshot.Snapshot) {
	if reg == nil {
		return
	}
	counts := make(map[string]int)
	for kind, n := range snap.Store.Counts() {
		counts[string(kind)] = n
	}
	reg.SetSnapshotStats(counts, snap.Index.EdgeCount(), snap.BuiltAt)
}

// Run blocks until ctx is cancelled, refreshing on the configured
// triggers. It returns ctx.Err, or the watcher setup error.
func (r *Refresher) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if r.watchPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Add(r.watchPath); err != nil {
			return err
		}
		events = watcher.Events
		watchErrs = watcher.Errors
	}

	var pending *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			_ = r.Refresh(ctx)
		case ev := <-events:
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if pending == nil {
				pending = time.NewTimer(debounce)
				fire = pending.C
			} else {
				pending.Reset(debounce)
			}
		case <-fire:
			pending = nil
			fire = nil
			_ = r.Refresh(ctx)
		case err := <-watchErrs:
			r.log.Warn("feed watcher error", logging.Error(err))
		}
	}
}
