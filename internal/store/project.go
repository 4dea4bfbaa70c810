package store

import (
	"encoding/json"
	"sync"

	projectdomain "smartrfq/internal/project/domain"
)

const (
	ProjectSnapshotKey = "project-storage"
	// OrganizationKey holds the organization-wide project list.
	OrganizationKey = "organization"
)

type ProjectState struct {
	Projects   map[string][]projectdomain.Project `json:"projects"`
	SelectedID string                             `json:"selected_id,omitempty"`
	Meta
}

func InitialProjectState() ProjectState {
	return ProjectState{Projects: map[string][]projectdomain.Project{}}
}

type ProjectStore struct {
	epochGuard
	mu    sync.RWMutex
	state ProjectState
	gens  generations
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{state: InitialProjectState(), gens: newGenerations()}
}

func (s *ProjectStore) SnapshotKey() string { return ProjectSnapshotKey }

func (s *ProjectStore) SetAll(key string, projects []projectdomain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAllLocked(key, projects)
}

func (s *ProjectStore) setAllLocked(key string, projects []projectdomain.Project) {
	s.state.Projects[key] = copyList(projects)
	if s.state.SelectedID != "" && !s.anyHolds(s.state.SelectedID) {
		s.state.SelectedID = ""
	}
	s.state.loaded()
}

func (s *ProjectStore) anyHolds(id string) bool {
	for _, list := range s.state.Projects {
		if indexOf(list, id) >= 0 {
			return true
		}
	}
	return false
}

// BeginLoad marks a new fetch for key and returns its generation.
func (s *ProjectStore) BeginLoad(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens.begin(key)
}

// SetAllIfCurrent applies the result of fetch gen unless a later fetch for the
// same key has started since. It reports whether the result was applied.
func (s *ProjectStore) SetAllIfCurrent(key string, gen uint64, projects []projectdomain.Project) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gens.isCurrent(key, gen) {
		return false
	}
	s.setAllLocked(key, projects)
	return true
}

// Add appends p to the organization list.
func (s *ProjectStore) Add(p projectdomain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Projects[OrganizationKey] = append(s.state.Projects[OrganizationKey], p)
}

func (s *ProjectStore) Update(id string, apply func(*projectdomain.Project)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAll(s.state.Projects, id, apply)
}

// Delete removes the project everywhere and clears it from the selection.
func (s *ProjectStore) Delete(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range deleteAll(s.state.Projects, id) {
		total += n
	}
	if s.state.SelectedID == id {
		s.state.SelectedID = ""
	}
	return total
}

// Select marks the project as the current one. An empty id clears it.
func (s *ProjectStore) Select(id string) {
	s.mu.Lock()
	s.state.SelectedID = id
	s.mu.Unlock()
}

func (s *ProjectStore) Selected() (projectdomain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.SelectedID == "" {
		return projectdomain.Project{}, false
	}
	for _, list := range s.state.Projects {
		if i := indexOf(list, s.state.SelectedID); i >= 0 {
			return list[i], true
		}
	}
	return projectdomain.Project{}, false
}

func (s *ProjectStore) List(key string) []projectdomain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyList(s.state.Projects[key])
}

// Has reports whether key holds a non-empty list.
func (s *ProjectStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Projects[key]) > 0
}

func (s *ProjectStore) SetLoading(v bool) {
	s.mu.Lock()
	s.state.setLoading(v)
	s.mu.Unlock()
}

func (s *ProjectStore) SetError(msg string) {
	s.mu.Lock()
	s.state.setError(msg)
	s.mu.Unlock()
}

// Reset clears the state and starts a new epoch, so responses to requests
// issued before it are dropped.
func (s *ProjectStore) Reset() {
	s.advance(func() {
		s.mu.Lock()
		s.state = InitialProjectState()
		s.gens.reset()
		s.mu.Unlock()
	})
}

// State returns a deep copy of the current state.
func (s *ProjectStore) State() ProjectState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Projects = cloneLists(s.state.Projects)
	return st
}

func (s *ProjectStore) Snapshot() ([]byte, error) {
	return json.Marshal(s.State())
}

func (s *ProjectStore) Restore(data []byte) error {
	st := InitialProjectState()
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.Projects == nil {
		st.Projects = map[string][]projectdomain.Project{}
	}
	st.Meta = Meta{}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}
