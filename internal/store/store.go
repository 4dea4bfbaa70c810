// Package store holds the client's canonical in-memory state: one store per
// entity type, each guarded by its own mutex and owned by a workspace.
//
// Stores never fail and never perform I/O. Loading and error flags are
// written by the sync layer; snapshots are persisted by the workspace.
package store

import "sync"

// Entity is anything a store can index by id.
type Entity interface {
	EntityID() string
}

// Store is implemented by every entity store.
type Store interface {
	SnapshotKey() string
	Reset()
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

// Meta is the loading/error pair every store carries. It is not persisted.
type Meta struct {
	Loading bool   `json:"-"`
	Error   string `json:"-"`
}

func (m *Meta) setLoading(v bool) { m.Loading = v }

// setError always ends loading; an empty message clears the error.
func (m *Meta) setError(msg string) {
	m.Error = msg
	m.Loading = false
}

func (m *Meta) loaded() {
	m.Error = ""
	m.Loading = false
}

// generations tracks the latest request issued per key. seq survives resets
// so a request started before a reset can never match one started after it.
type generations struct {
	seq     uint64
	current map[string]uint64
}

func newGenerations() generations {
	return generations{current: make(map[string]uint64)}
}

func (g *generations) begin(key string) uint64 {
	g.seq++
	g.current[key] = g.seq
	return g.seq
}

func (g *generations) isCurrent(key string, gen uint64) bool {
	return gen != 0 && g.current[key] == gen
}

func (g *generations) reset() {
	g.current = make(map[string]uint64)
}

// epochGuard ties writes to the reset they were issued under. Sync code
// captures Epoch before a network call and commits the response through
// Apply; a Reset in between makes Apply a no-op.
//
// Lock order is guard then store mutex. fn must not call Epoch, Apply or
// Reset on the same store.
type epochGuard struct {
	gmu   sync.RWMutex
	epoch uint64
}

func (g *epochGuard) Epoch() uint64 {
	g.gmu.RLock()
	defer g.gmu.RUnlock()
	return g.epoch
}

// Apply runs fn only if no reset happened since epoch was read.
func (g *epochGuard) Apply(epoch uint64, fn func()) bool {
	g.gmu.RLock()
	defer g.gmu.RUnlock()
	if g.epoch != epoch {
		return false
	}
	fn()
	return true
}

// advance runs reset and moves to a new epoch while no Apply is running.
func (g *epochGuard) advance(reset func()) {
	g.gmu.Lock()
	defer g.gmu.Unlock()
	g.epoch++
	reset()
}

// cloner is implemented by entities that hold slices of their own.
type cloner[T any] interface {
	Clone() T
}

// copyList copies items, cloning each element that holds reference fields so
// callers never share backing arrays with a store.
func copyList[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	var zero T
	if _, ok := any(zero).(cloner[T]); ok {
		for i := range out {
			out[i] = any(out[i]).(cloner[T]).Clone()
		}
	}
	return out
}

func cloneLists[T any](m map[string][]T) map[string][]T {
	out := make(map[string][]T, len(m))
	for k, v := range m {
		out[k] = copyList(v)
	}
	return out
}

// updateAll applies fn to every element with the given id, across all keys.
func updateAll[T Entity](m map[string][]T, id string, apply func(*T)) int {
	touched := 0
	for _, list := range m {
		for i := range list {
			if list[i].EntityID() == id {
				apply(&list[i])
				touched++
			}
		}
	}
	return touched
}

// deleteAll removes every element with the given id and reports how many
// were removed from each key.
func deleteAll[T Entity](m map[string][]T, id string) map[string]int {
	removed := map[string]int{}
	for key, list := range m {
		kept := list[:0]
		for _, item := range list {
			if item.EntityID() == id {
				removed[key]++
				continue
			}
			kept = append(kept, item)
		}
		if removed[key] > 0 {
			var zero T
			for i := len(kept); i < len(list); i++ {
				list[i] = zero
			}
			m[key] = kept
		}
	}
	return removed
}

func indexOf[T Entity](list []T, id string) int {
	for i := range list {
		if list[i].EntityID() == id {
			return i
		}
	}
	return -1
}
