// Package workspace assembles the client runtime: entity stores, sync hooks,
// snapshots, tenant tracking and the idle-session timer.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"smartrfq/internal/session"
	"smartrfq/internal/store"
	"smartrfq/internal/syncer"
	"smartrfq/internal/tenant"
	"smartrfq/pkg/logger"
	"smartrfq/pkg/metrics"
	"smartrfq/pkg/notify"
	"smartrfq/pkg/snapshot"
)

// API is the backend surface the hooks need. *rfqapi.Client satisfies it.
type API interface {
	syncer.ProjectAPI
	syncer.SupplierAPI
	syncer.RFQAPI
	syncer.EmailAPI
	syncer.UserAPI
}

// Hooks is one generation of sync hooks. A reload replaces all of them.
type Hooks struct {
	Projects  *syncer.ProjectSync
	Suppliers *syncer.SupplierSync
	RFQ       *syncer.RFQSync
	Email     *syncer.EmailSync
	User      *syncer.UserSync
}

type Options struct {
	Notifier notify.Notifier
	Metrics  *metrics.Sync
	Log      *logger.Logger
	Session  session.Options
}

type Workspace struct {
	Projects  *store.ProjectStore
	Suppliers *store.SupplierStore
	RFQ       *store.RFQStore
	Email     *store.EmailStore
	Users     *store.UserStore

	Tenant  *tenant.Invalidator
	Session *session.Timer

	api       API
	snapshots snapshot.Persister
	deps      syncer.Deps
	log       *logger.Logger

	mu    sync.RWMutex
	hooks *Hooks
	epoch uint64
}

func New(api API, snapshots snapshot.Persister, opts Options) *Workspace {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	w := &Workspace{
		Projects:  store.NewProjectStore(),
		Suppliers: store.NewSupplierStore(),
		RFQ:       store.NewRFQStore(),
		Email:     store.NewEmailStore(),
		Users:     store.NewUserStore(),
		api:       api,
		snapshots: snapshots,
		deps:      syncer.Deps{Notifier: opts.Notifier, Metrics: opts.Metrics, Log: opts.Log},
		log:       opts.Log.With("component", "Workspace"),
	}
	w.Tenant = tenant.New(w.Stores(), snapshots, opts.Notifier, opts.Log)
	w.Tenant.OnReload(w.Reload)

	sessionOpts := opts.Session
	if sessionOpts.Notifier == nil {
		sessionOpts.Notifier = opts.Notifier
	}
	if sessionOpts.Log == nil {
		sessionOpts.Log = opts.Log
	}
	if sessionOpts.Logout == nil {
		sessionOpts.Logout = func() {
			if err := w.Logout(context.Background()); err != nil {
				w.log.Error("logout failed", "error", err)
			}
		}
	}
	w.Session = session.New(sessionOpts)

	w.Reload()
	w.Session.Start()
	return w
}

// Stores lists every store in a fixed order.
func (w *Workspace) Stores() []store.Store {
	return []store.Store{w.Projects, w.Suppliers, w.RFQ, w.Email, w.Users}
}

// Reload discards the current hooks and builds fresh ones. Work that the old
// hooks still have in flight can no longer claim their single-flight guards.
// Its store writes are dropped when the stores were reset since it started.
func (w *Workspace) Reload() {
	h := &Hooks{
		Projects:  syncer.NewProjectSync(w.api, w.Projects, w.deps),
		Suppliers: syncer.NewSupplierSync(w.api, w.Suppliers, w.deps),
		RFQ:       syncer.NewRFQSync(w.api, w.RFQ, w.deps),
		Email:     syncer.NewEmailSync(w.api, w.Email, w.deps),
		User:      syncer.NewUserSync(w.api, w.Users, w.deps),
	}
	h.User.OnOrg = w.observeOrg

	w.mu.Lock()
	w.hooks = h
	w.epoch++
	epoch := w.epoch
	w.mu.Unlock()
	w.log.Debug("hooks reloaded", "epoch", epoch)
}

func (w *Workspace) observeOrg(orgID string) {
	if _, err := w.Tenant.Observe(context.Background(), orgID); err != nil {
		w.log.Warn("tenant change cleanup incomplete", "error", err)
	}
}

// Hooks returns the current hooks. Every call counts as user activity and
// restarts the idle timer.
func (w *Workspace) Hooks() *Hooks {
	w.Session.Touch()
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hooks
}

func (w *Workspace) Epoch() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.epoch
}

// SaveAll persists a snapshot of every store.
func (w *Workspace) SaveAll(ctx context.Context) error {
	var errs []error
	for _, s := range w.Stores() {
		data, err := s.Snapshot()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.SnapshotKey(), err))
			continue
		}
		if err := w.snapshots.Save(ctx, s.SnapshotKey(), data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.SnapshotKey(), err))
		}
	}
	return errors.Join(errs...)
}

// LoadAll restores every store that has a snapshot and seeds the tenant
// tracker with the organization of the restored user.
func (w *Workspace) LoadAll(ctx context.Context) error {
	var errs []error
	for _, s := range w.Stores() {
		data, ok, err := w.snapshots.Load(ctx, s.SnapshotKey())
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.SnapshotKey(), err))
			continue
		}
		if !ok {
			continue
		}
		if err := s.Restore(data); err != nil {
			w.log.Warn("discarding unreadable snapshot", "key", s.SnapshotKey(), "error", err)
			s.Reset()
		}
	}
	w.Tenant.Seed(w.Users.OrgID())
	return errors.Join(errs...)
}

// SwitchOrg feeds an organization change from outside the user sync, for
// example from the command line.
func (w *Workspace) SwitchOrg(ctx context.Context, orgID string) (bool, error) {
	return w.Tenant.Observe(ctx, orgID)
}

// Logout clears every store and snapshot, forgets the tenant and stops the
// idle timer.
func (w *Workspace) Logout(ctx context.Context) error {
	w.Session.Stop()
	err := tenant.Purge(ctx, w.Stores(), w.snapshots)
	w.Tenant.Seed("")
	w.Reload()
	return err
}

// Summary is what a full sync loaded.
type Summary struct {
	OrgID         string
	Projects      int
	Suppliers     int
	Conversations int
	Stats         store.Stats
}

// Sync reconciles the user, then loads projects, every project's items, the
// organization's suppliers and every project's conversations. Stores are
// snapshotted afterwards.
func (w *Workspace) Sync(ctx context.Context) (*Summary, error) {
	user, err := w.Hooks().User.Reconcile(ctx)
	if err != nil && !errors.Is(err, syncer.ErrInProgress) {
		return nil, err
	}
	h := w.Hooks()

	projects, err := h.Projects.Load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	if err := h.RFQ.LoadAllProjectItems(ctx, ids); err != nil {
		return nil, err
	}
	suppliers, err := h.Suppliers.Load(ctx, store.GlobalKey)
	if err != nil {
		return nil, err
	}
	conversations := 0
	for _, id := range ids {
		list, err := h.Email.LoadConversations(ctx, id)
		if err != nil {
			return nil, err
		}
		conversations += len(list)
	}

	if err := w.SaveAll(ctx); err != nil {
		w.log.Warn("failed to persist snapshots", "error", err)
	}
	sum := &Summary{
		Projects:      len(projects),
		Suppliers:     len(suppliers),
		Conversations: conversations,
		Stats:         w.RFQ.Stats(),
	}
	if user != nil {
		sum.OrgID = user.OrgID
	}
	return sum, nil
}
