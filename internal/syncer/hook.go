// Package syncer bridges the entity stores to the REST backend. Loads are
// cache-first: the network is only called when the store holds nothing for
// the key. Refresh always goes to the network.
package syncer

import (
	"errors"
	"sync"

	"smartrfq/pkg/apierr"
	"smartrfq/pkg/logger"
	"smartrfq/pkg/metrics"
	"smartrfq/pkg/notify"
)

// ErrInProgress is returned when the same hook already has the same fetch in
// flight. No network call is made.
var ErrInProgress = errors.New("request already in progress")

type Deps struct {
	Notifier notify.Notifier
	Metrics  *metrics.Sync
	Log      *logger.Logger
}

// flights guards the queries of one hook instance, one slot per key, so a
// fetch for one project never blocks a fetch for another.
type flights struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func (f *flights) acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.busy[key]; ok {
		return false
	}
	if f.busy == nil {
		f.busy = make(map[string]struct{})
	}
	f.busy[key] = struct{}{}
	return true
}

func (f *flights) release(key string) {
	f.mu.Lock()
	delete(f.busy, key)
	f.mu.Unlock()
}

// epochStore is a store whose writes are dropped once it has been reset.
type epochStore interface {
	Epoch() uint64
	Apply(epoch uint64, fn func()) bool
}

type hook struct {
	resource string
	notifier notify.Notifier
	metrics  *metrics.Sync
	log      *logger.Logger
}

func newHook(resource string, deps Deps) hook {
	h := hook{resource: resource, notifier: deps.Notifier, metrics: deps.Metrics, log: deps.Log}
	if h.notifier == nil {
		h.notifier = notify.Discard
	}
	if h.log == nil {
		h.log = logger.Nop()
	}
	h.log = h.log.With("component", "Sync", "resource", resource)
	return h
}

func (h *hook) cacheHit() {
	if h.metrics != nil {
		h.metrics.CacheHits.WithLabelValues(h.resource).Inc()
	}
}

// fetchStarted counts a network fetch and returns the func that records its
// duration.
func (h *hook) fetchStarted() func() {
	if h.metrics == nil {
		return func() {}
	}
	h.metrics.Fetches.WithLabelValues(h.resource).Inc()
	return h.metrics.Track(h.resource)
}

func (h *hook) stale(key string) {
	h.log.Debug("discarding superseded response", "key", key)
	if h.metrics != nil {
		h.metrics.StaleDiscards.WithLabelValues(h.resource).Inc()
	}
}

// commit applies fn to st unless st was reset after epoch was taken.
func (h *hook) commit(st epochStore, epoch uint64, key string, fn func()) bool {
	if st.Apply(epoch, fn) {
		return true
	}
	h.stale(key)
	return false
}

// errorAt returns a setter that records an error only within epoch.
func errorAt(st epochStore, epoch uint64, set func(string)) func(string) {
	return func(msg string) {
		st.Apply(epoch, func() { set(msg) })
	}
}

// fail records err on the store, raises a notice and hands err back.
func (h *hook) fail(setError func(string), title string, err error) error {
	if setError != nil {
		setError(err.Error())
	}
	if h.metrics != nil {
		h.metrics.FetchFailures.WithLabelValues(h.resource).Inc()
	}
	if apierr.IsAuth(err) {
		title = "Authentication required"
	}
	h.log.Warn(title, "error", err)
	h.notifier.Notify(notify.New(notify.LevelError, title, err.Error()))
	return err
}

func (h *hook) success(title, message string) {
	h.notifier.Notify(notify.New(notify.LevelSuccess, title, message))
}
