// Package notify delivers short user-facing notices (toasts in a UI, lines on
// a terminal) from background components.
package notify

import (
	"sync"
	"time"

	"smartrfq/pkg/logger"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier must not block the caller for long; notices are transient.
type Notifier interface {
	Notify(n Notice)
}

func New(level Level, title, message string) Notice {
	return Notice{Level: level, Title: title, Message: message, At: time.Now()}
}

// LogNotifier writes notices to a structured logger.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "Notifier")}
}

func (n *LogNotifier) Notify(notice Notice) {
	kv := []interface{}{"title", notice.Title, "message", notice.Message}
	switch notice.Level {
	case LevelError:
		n.log.Error("notice", kv...)
	case LevelWarning:
		n.log.Warn("notice", kv...)
	default:
		n.log.Info("notice", kv...)
	}
}

// ChanNotifier buffers notices on a channel. When the buffer is full the
// notice is dropped rather than blocking the sender.
type ChanNotifier struct {
	ch chan Notice
}

func NewChanNotifier(size int) *ChanNotifier {
	if size <= 0 {
		size = 64
	}
	return &ChanNotifier{ch: make(chan Notice, size)}
}

func (n *ChanNotifier) Notify(notice Notice) {
	select {
	case n.ch <- notice:
	default:
	}
}

func (n *ChanNotifier) C() <-chan Notice { return n.ch }

// Drain returns every notice currently buffered.
func (n *ChanNotifier) Drain() []Notice {
	var out []Notice
	for {
		select {
		case notice := <-n.ch:
			out = append(out, notice)
		default:
			return out
		}
	}
}

// Fanout forwards every notice to each of its targets.
type Fanout struct {
	mu      sync.RWMutex
	targets []Notifier
}

func NewFanout(targets ...Notifier) *Fanout {
	return &Fanout{targets: targets}
}

func (f *Fanout) Add(n Notifier) {
	f.mu.Lock()
	f.targets = append(f.targets, n)
	f.mu.Unlock()
}

func (f *Fanout) Notify(notice Notice) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.targets {
		t.Notify(notice)
	}
}

// Discard drops every notice.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Notice) {}
