// Package tenant evicts per-organization client state when the active
// organization changes.
package tenant

import (
	"context"
	"fmt"
	"sync"

	"smartrfq/internal/store"
	"smartrfq/pkg/logger"
	"smartrfq/pkg/notify"
)

// SnapshotDeleter removes persisted snapshots by key.
type SnapshotDeleter interface {
	Delete(ctx context.Context, keys ...string) error
}

type State int

const (
	Tracking State = iota
	Invalidating
)

func (s State) String() string {
	if s == Invalidating {
		return "invalidating"
	}
	return "tracking"
}

// Purge resets every store and deletes every store's snapshot key. The
// stores are reset even when the delete fails.
func Purge(ctx context.Context, stores []store.Store, snapshots SnapshotDeleter) error {
	keys := make([]string, 0, len(stores))
	for _, s := range stores {
		s.Reset()
		keys = append(keys, s.SnapshotKey())
	}
	if snapshots == nil {
		return nil
	}
	if err := snapshots.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}

// Invalidator remembers the last observed organization. Observations are
// serialized, so two quick switches are both seen in order.
type Invalidator struct {
	mu        sync.Mutex
	current   string
	state     State
	stores    []store.Store
	snapshots SnapshotDeleter
	notifier  notify.Notifier
	reload    func()
	log       *logger.Logger
}

func New(stores []store.Store, snapshots SnapshotDeleter, notifier notify.Notifier, log *logger.Logger) *Invalidator {
	if notifier == nil {
		notifier = notify.Discard
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Invalidator{
		stores:    stores,
		snapshots: snapshots,
		notifier:  notifier,
		log:       log.With("component", "TenantInvalidator"),
	}
}

// OnReload sets the hook run after an invalidation. It runs while the
// invalidator holds its lock and must not call Observe.
func (i *Invalidator) OnReload(fn func()) {
	i.mu.Lock()
	i.reload = fn
	i.mu.Unlock()
}

// Seed records orgID as the current organization without invalidating.
// Used when restoring persisted state at startup.
func (i *Invalidator) Seed(orgID string) {
	i.mu.Lock()
	i.current = orgID
	i.mu.Unlock()
}

func (i *Invalidator) Current() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.current
}

func (i *Invalidator) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Observe handles a tenant-change event. When a non-empty organization was
// recorded and orgID differs from it, every store is reset, every snapshot is
// deleted, a notice is raised and the reload hook runs. It reports whether an
// invalidation happened.
func (i *Invalidator) Observe(ctx context.Context, orgID string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	prev := i.current
	i.current = orgID
	if prev == "" || prev == orgID {
		return false, nil
	}

	i.state = Invalidating
	defer func() { i.state = Tracking }()

	i.log.Info("organization changed, clearing cached data", "from", prev, "to", orgID)
	err := Purge(ctx, i.stores, i.snapshots)
	if err != nil {
		i.log.Error("failed to clear snapshots", "error", err)
	}
	i.notifier.Notify(notify.New(notify.LevelInfo, "Organization changed",
		"Cached data from the previous organization was cleared. Reloading."))
	if i.reload != nil {
		i.reload()
	}
	return true, err
}
