package store

import (
	"encoding/json"
	"sync"

	rfqdomain "smartrfq/internal/rfq/domain"
)

const RFQSnapshotKey = "rfq-storage"

// Stats caches list lengths so totals are available without a scan. Add and
// Delete adjust them incrementally; SetAll and Recount recompute them.
type Stats struct {
	TotalItems        int            `json:"total_items"`
	ItemsByProject    map[string]int `json:"items_by_project"`
	InitialDataLoaded bool           `json:"initial_data_loaded"`
}

type RFQState struct {
	Parts    map[string][]rfqdomain.Part `json:"parts"`
	Files    map[string][]rfqdomain.File `json:"files"`
	Selected []string                    `json:"selected"`
	Stats    Stats                       `json:"stats"`
	Meta
}

func InitialRFQState() RFQState {
	return RFQState{
		Parts:    map[string][]rfqdomain.Part{},
		Files:    map[string][]rfqdomain.File{},
		Selected: []string{},
		Stats:    Stats{ItemsByProject: map[string]int{}},
	}
}

type RFQStore struct {
	epochGuard
	mu    sync.RWMutex
	state RFQState
	gens  generations
}

func NewRFQStore() *RFQStore {
	return &RFQStore{state: InitialRFQState(), gens: newGenerations()}
}

func (s *RFQStore) SnapshotKey() string { return RFQSnapshotKey }

// SetAll replaces the parts of one project and recomputes its count.
func (s *RFQStore) SetAll(projectID string, parts []rfqdomain.Part) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAllLocked(projectID, parts)
}

func (s *RFQStore) setAllLocked(projectID string, parts []rfqdomain.Part) {
	s.state.Parts[projectID] = copyList(parts)
	s.state.Stats.ItemsByProject[projectID] = len(parts)
	total := 0
	for _, n := range s.state.Stats.ItemsByProject {
		total += n
	}
	s.state.Stats.TotalItems = total
	s.scrubSelectionLocked()
	s.state.loaded()
}

func (s *RFQStore) BeginLoad(projectID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens.begin(projectID)
}

func (s *RFQStore) SetAllIfCurrent(projectID string, gen uint64, parts []rfqdomain.Part) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gens.isCurrent(projectID, gen) {
		return false
	}
	s.setAllLocked(projectID, parts)
	return true
}

// SetAllProjectItems replaces the parts of every project at once. It marks
// the initial load complete even when there are no projects. Per-project
// loads still in flight are superseded and selected ids that no longer exist
// are dropped.
func (s *RFQStore) SetAllProjectItems(byProject map[string][]rfqdomain.Part) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.state.Parts {
		s.gens.begin(key)
	}
	for key := range byProject {
		s.gens.begin(key)
	}
	s.state.Parts = cloneLists(byProject)
	s.recountLocked()
	s.scrubSelectionLocked()
	s.state.Stats.InitialDataLoaded = true
	s.state.loaded()
}

func (s *RFQStore) scrubSelectionLocked() {
	present := make(map[string]bool, s.state.Stats.TotalItems)
	for _, list := range s.state.Parts {
		for _, p := range list {
			present[p.ID] = true
		}
	}
	kept := s.state.Selected[:0]
	for _, id := range s.state.Selected {
		if present[id] {
			kept = append(kept, id)
		}
	}
	s.state.Selected = kept
}

func (s *RFQStore) Add(part rfqdomain.Part) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Parts[part.ProjectID] = append(s.state.Parts[part.ProjectID], part)
	s.state.Stats.ItemsByProject[part.ProjectID]++
	s.state.Stats.TotalItems++
}

func (s *RFQStore) Update(id string, apply func(*rfqdomain.Part)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAll(s.state.Parts, id, apply)
}

// Delete removes the part from every project list, decrements each count by
// what was actually removed there and drops the id from the selection.
func (s *RFQStore) Delete(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

func (s *RFQStore) deleteLocked(id string) int {
	total := 0
	for key, n := range deleteAll(s.state.Parts, id) {
		s.state.Stats.ItemsByProject[key] -= n
		s.state.Stats.TotalItems -= n
		total += n
	}
	s.unselectLocked(id)
	return total
}

func (s *RFQStore) DeleteMany(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, id := range ids {
		total += s.deleteLocked(id)
	}
	return total
}

// Recount recomputes every count from the part lists.
func (s *RFQStore) Recount() {
	s.mu.Lock()
	s.recountLocked()
	s.mu.Unlock()
}

func (s *RFQStore) recountLocked() {
	byProject := make(map[string]int, len(s.state.Parts))
	total := 0
	for key, list := range s.state.Parts {
		byProject[key] = len(list)
		total += len(list)
	}
	s.state.Stats.ItemsByProject = byProject
	s.state.Stats.TotalItems = total
}

func (s *RFQStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStats(s.state.Stats)
}

func copyStats(st Stats) Stats {
	out := st
	out.ItemsByProject = make(map[string]int, len(st.ItemsByProject))
	for k, v := range st.ItemsByProject {
		out.ItemsByProject[k] = v
	}
	return out
}

func (s *RFQStore) List(projectID string) []rfqdomain.Part {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyList(s.state.Parts[projectID])
}

func (s *RFQStore) Has(projectID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Parts[projectID]) > 0
}

// InitialDataLoaded reports whether a bulk load has completed.
func (s *RFQStore) InitialDataLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Stats.InitialDataLoaded
}

// Toggle flips id's membership in the selection.
func (s *RFQStore) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sel := range s.state.Selected {
		if sel == id {
			s.unselectLocked(id)
			return
		}
	}
	s.state.Selected = append(s.state.Selected, id)
}

// SelectAll replaces the selection with every part of the project.
func (s *RFQStore) SelectAll(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.state.Parts[projectID]
	sel := make([]string, 0, len(list))
	for _, p := range list {
		sel = append(sel, p.ID)
	}
	s.state.Selected = sel
}

func (s *RFQStore) ClearSelection() {
	s.mu.Lock()
	s.state.Selected = []string{}
	s.mu.Unlock()
}

func (s *RFQStore) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyList(s.state.Selected)
}

func (s *RFQStore) unselectLocked(id string) {
	kept := s.state.Selected[:0]
	for _, sel := range s.state.Selected {
		if sel != id {
			kept = append(kept, sel)
		}
	}
	s.state.Selected = kept
}

func (s *RFQStore) SetFiles(projectID string, files []rfqdomain.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Files[projectID] = copyList(files)
	s.state.loaded()
}

func (s *RFQStore) AddFile(f rfqdomain.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Files[f.ProjectID] = append(s.state.Files[f.ProjectID], f)
}

func (s *RFQStore) UpdateFile(id string, apply func(*rfqdomain.File)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAll(s.state.Files, id, apply)
}

func (s *RFQStore) DeleteFile(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range deleteAll(s.state.Files, id) {
		total += n
	}
	return total
}

func (s *RFQStore) Files(projectID string) []rfqdomain.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyList(s.state.Files[projectID])
}

func (s *RFQStore) HasFiles(projectID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Files[projectID]) > 0
}

func (s *RFQStore) SetLoading(v bool) {
	s.mu.Lock()
	s.state.setLoading(v)
	s.mu.Unlock()
}

func (s *RFQStore) SetError(msg string) {
	s.mu.Lock()
	s.state.setError(msg)
	s.mu.Unlock()
}

// Reset clears the state and starts a new epoch, so responses to requests
// issued before it are dropped.
func (s *RFQStore) Reset() {
	s.advance(func() {
		s.mu.Lock()
		s.state = InitialRFQState()
		s.gens.reset()
		s.mu.Unlock()
	})
}

func (s *RFQStore) State() RFQState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Parts = cloneLists(s.state.Parts)
	st.Files = cloneLists(s.state.Files)
	st.Selected = copyList(s.state.Selected)
	st.Stats = copyStats(s.state.Stats)
	return st
}

func (s *RFQStore) Snapshot() ([]byte, error) {
	return json.Marshal(s.State())
}

func (s *RFQStore) Restore(data []byte) error {
	st := InitialRFQState()
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.Parts == nil {
		st.Parts = map[string][]rfqdomain.Part{}
	}
	if st.Files == nil {
		st.Files = map[string][]rfqdomain.File{}
	}
	if st.Selected == nil {
		st.Selected = []string{}
	}
	st.Meta = Meta{}
	s.mu.Lock()
	s.state = st
	s.recountLocked()
	s.mu.Unlock()
	return nil
}
