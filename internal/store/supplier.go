package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	supplierdomain "smartrfq/internal/supplier/domain"
)

const SupplierSnapshotKey = "supplier-storage"

// GlobalKey is the bucket that mirrors every known supplier.
const GlobalKey = supplierdomain.GlobalKey

// SupplierState buckets suppliers by project id. The global bucket is a
// derived index: Index holds exactly the ids present in it, and every
// supplier held by a project bucket is mirrored there once.
type SupplierState struct {
	Suppliers map[string][]supplierdomain.Supplier `json:"suppliers"`
	Index     map[string]struct{}                  `json:"-"`
	Meta
}

func InitialSupplierState() SupplierState {
	return SupplierState{
		Suppliers: map[string][]supplierdomain.Supplier{},
		Index:     map[string]struct{}{},
	}
}

type SupplierStore struct {
	epochGuard
	mu    sync.RWMutex
	state SupplierState
	gens  generations
}

func NewSupplierStore() *SupplierStore {
	return &SupplierStore{state: InitialSupplierState(), gens: newGenerations()}
}

func (s *SupplierStore) SnapshotKey() string { return SupplierSnapshotKey }

// mirror upserts sup into the global bucket.
func (s *SupplierStore) mirror(sup supplierdomain.Supplier) {
	global := s.state.Suppliers[GlobalKey]
	if _, ok := s.state.Index[sup.ID]; ok {
		if i := indexOf(global, sup.ID); i >= 0 {
			global[i] = sup
			return
		}
	}
	s.state.Suppliers[GlobalKey] = append(global, sup)
	s.state.Index[sup.ID] = struct{}{}
}

// SetAll replaces the bucket at key. Project buckets are mirrored into the
// global bucket; replacing the global bucket keeps suppliers that project
// buckets still hold.
func (s *SupplierStore) SetAll(key string, suppliers []supplierdomain.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAllLocked(key, suppliers)
}

func (s *SupplierStore) setAllLocked(key string, suppliers []supplierdomain.Supplier) {
	if key != GlobalKey {
		s.state.Suppliers[key] = dedupe(suppliers)
		for _, sup := range s.state.Suppliers[key] {
			s.mirror(sup)
		}
		s.state.loaded()
		return
	}

	s.state.Suppliers[GlobalKey] = dedupe(suppliers)
	s.state.Index = make(map[string]struct{}, len(suppliers))
	for _, sup := range s.state.Suppliers[GlobalKey] {
		s.state.Index[sup.ID] = struct{}{}
	}
	for _, k := range s.projectKeys() {
		for _, sup := range s.state.Suppliers[k] {
			if _, ok := s.state.Index[sup.ID]; !ok {
				s.mirror(sup)
			}
		}
	}
	s.state.loaded()
}

func (s *SupplierStore) projectKeys() []string {
	keys := make([]string, 0, len(s.state.Suppliers))
	for k := range s.state.Suppliers {
		if k != GlobalKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func dedupe(in []supplierdomain.Supplier) []supplierdomain.Supplier {
	out := make([]supplierdomain.Supplier, 0, len(in))
	seen := make(map[string]int, len(in))
	for _, sup := range in {
		if i, ok := seen[sup.ID]; ok {
			out[i] = sup
			continue
		}
		seen[sup.ID] = len(out)
		out = append(out, sup)
	}
	return out
}

func (s *SupplierStore) BeginLoad(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens.begin(key)
}

func (s *SupplierStore) SetAllIfCurrent(key string, gen uint64, suppliers []supplierdomain.Supplier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gens.isCurrent(key, gen) {
		return false
	}
	s.setAllLocked(key, suppliers)
	return true
}

// Add upserts sup into its owning bucket and mirrors it into the global
// bucket. Adding the same id twice leaves one entry in each bucket.
func (s *SupplierStore) Add(sup supplierdomain.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sup.BucketKey()
	if key == GlobalKey {
		s.mirror(sup)
		return
	}
	list := s.state.Suppliers[key]
	if i := indexOf(list, sup.ID); i >= 0 {
		list[i] = sup
	} else {
		s.state.Suppliers[key] = append(list, sup)
	}
	s.mirror(sup)
}

// Update applies fn to the supplier in every bucket holding it.
func (s *SupplierStore) Update(id string, apply func(*supplierdomain.Supplier)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAll(s.state.Suppliers, id, apply)
}

// Delete removes the supplier from every bucket and from the index.
func (s *SupplierStore) Delete(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range deleteAll(s.state.Suppliers, id) {
		total += n
	}
	delete(s.state.Index, id)
	return total
}

func (s *SupplierStore) List(key string) []supplierdomain.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyList(s.state.Suppliers[key])
}

func (s *SupplierStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Suppliers[key]) > 0
}

// FindByEmail returns the first supplier with the given address.
func (s *SupplierStore) FindByEmail(email string) (supplierdomain.Supplier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sup := range s.state.Suppliers[GlobalKey] {
		if sup.Email == email {
			return sup, true
		}
	}
	return supplierdomain.Supplier{}, false
}

// CheckIndex verifies the global-bucket invariant.
func (s *SupplierStore) CheckIndex() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	global := s.state.Suppliers[GlobalKey]
	seen := make(map[string]struct{}, len(global))
	for _, sup := range global {
		if _, dup := seen[sup.ID]; dup {
			return fmt.Errorf("supplier %s appears twice in the global bucket", sup.ID)
		}
		seen[sup.ID] = struct{}{}
		if _, ok := s.state.Index[sup.ID]; !ok {
			return fmt.Errorf("supplier %s is in the global bucket but not indexed", sup.ID)
		}
	}
	if len(seen) != len(s.state.Index) {
		return fmt.Errorf("index holds %d ids, global bucket holds %d", len(s.state.Index), len(seen))
	}
	for key, list := range s.state.Suppliers {
		if key == GlobalKey {
			continue
		}
		for _, sup := range list {
			if _, ok := seen[sup.ID]; !ok {
				return fmt.Errorf("supplier %s in bucket %s is not mirrored into global", sup.ID, key)
			}
		}
	}
	return nil
}

func (s *SupplierStore) SetLoading(v bool) {
	s.mu.Lock()
	s.state.setLoading(v)
	s.mu.Unlock()
}

func (s *SupplierStore) SetError(msg string) {
	s.mu.Lock()
	s.state.setError(msg)
	s.mu.Unlock()
}

// Reset clears the state and starts a new epoch, so responses to requests
// issued before it are dropped.
func (s *SupplierStore) Reset() {
	s.advance(func() {
		s.mu.Lock()
		s.state = InitialSupplierState()
		s.gens.reset()
		s.mu.Unlock()
	})
}

func (s *SupplierStore) State() SupplierState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Suppliers = cloneLists(s.state.Suppliers)
	st.Index = make(map[string]struct{}, len(s.state.Index))
	for id := range s.state.Index {
		st.Index[id] = struct{}{}
	}
	return st
}

func (s *SupplierStore) Snapshot() ([]byte, error) {
	return json.Marshal(s.State())
}

// Restore loads a snapshot and rebuilds the global index from it.
func (s *SupplierStore) Restore(data []byte) error {
	var st SupplierState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = InitialSupplierState()
	for key, list := range st.Suppliers {
		if key != GlobalKey {
			s.state.Suppliers[key] = dedupe(list)
		}
	}
	s.setAllLocked(GlobalKey, st.Suppliers[GlobalKey])
	return nil
}
