// Package session signs the user out after a period of inactivity.
package session

import (
	"sync"
	"time"

	"smartrfq/pkg/logger"
	"smartrfq/pkg/notify"
)

const (
	DefaultTimeout = 15 * time.Minute
	DefaultGrace   = time.Minute
)

type Options struct {
	Timeout  time.Duration
	Grace    time.Duration
	Notifier notify.Notifier
	// Prompt runs when the session is about to expire, after the notice.
	Prompt func()
	// Logout runs once the grace period passes without a Touch.
	Logout func()
	Log    *logger.Logger
}

// Timer tracks user activity. Every Touch restarts the countdown.
type Timer struct {
	mu       sync.Mutex
	opts     Options
	timer    *time.Timer
	gen      uint64
	expiring bool
	stopped  bool
}

func New(opts Options) *Timer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	opts.Log = opts.Log.With("component", "IdleTimer")
	return &Timer{opts: opts}
}

// Start arms the timer. It is equivalent to Touch.
func (t *Timer) Start() { t.Touch() }

// Touch records activity and dismisses a pending expiry prompt.
func (t *Timer) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.expiring = false
	t.armLocked(t.opts.Timeout, t.onIdle)
}

// Expiring reports whether the prompt has fired and the grace period is
// running.
func (t *Timer) Expiring() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expiring
}

// Stop cancels the timers. A stopped timer ignores Touch.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// armLocked replaces the pending timer. Callbacks from an earlier arm see a
// different generation and do nothing.
func (t *Timer) armLocked(d time.Duration, fn func(gen uint64)) {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(d, func() { fn(gen) })
}

func (t *Timer) onIdle(gen uint64) {
	t.mu.Lock()
	if t.stopped || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.expiring = true
	t.armLocked(t.opts.Grace, t.onExpire)
	t.mu.Unlock()

	t.opts.Log.Info("session idle, prompting")
	t.opts.Notifier.Notify(notify.New(notify.LevelWarning, "Session expiring",
		"You will be signed out soon due to inactivity."))
	if t.opts.Prompt != nil {
		t.opts.Prompt()
	}
}

func (t *Timer) onExpire(gen uint64) {
	t.mu.Lock()
	if t.stopped || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.expiring = false
	t.timer = nil
	t.mu.Unlock()

	t.opts.Log.Info("session expired, signing out")
	if t.opts.Logout != nil {
		t.opts.Logout()
	}
	t.opts.Notifier.Notify(notify.New(notify.LevelInfo, "Signed out", "Your session expired."))
}
