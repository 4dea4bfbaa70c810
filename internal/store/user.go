package store

import (
	"encoding/json"
	"sync"

	authdomain "smartrfq/internal/auth/domain"
)

const UserSnapshotKey = "user-storage"

// UserState mirrors the signed-in user. Reconciled is per process and is
// not persisted.
type UserState struct {
	User       *authdomain.User `json:"user,omitempty"`
	Reconciled bool             `json:"-"`
	Meta
}

func InitialUserState() UserState { return UserState{} }

type UserStore struct {
	mu    sync.RWMutex
	state UserState
}

func NewUserStore() *UserStore { return &UserStore{state: InitialUserState()} }

func (s *UserStore) SnapshotKey() string { return UserSnapshotKey }

func (s *UserStore) SetUser(u authdomain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = &u
	s.state.loaded()
}

func (s *UserStore) User() (authdomain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return authdomain.User{}, false
	}
	return *s.state.User, true
}

// OrgID returns the organization of the mirrored user, or "".
func (s *UserStore) OrgID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return ""
	}
	return s.state.User.OrgID
}

// MarkReconciled records that the user has been synced this session. It
// reports false if that had already happened.
func (s *UserStore) MarkReconciled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Reconciled {
		return false
	}
	s.state.Reconciled = true
	return true
}

func (s *UserStore) Reconciled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Reconciled
}

// ClearReconciled allows the next reconcile to run again.
func (s *UserStore) ClearReconciled() {
	s.mu.Lock()
	s.state.Reconciled = false
	s.mu.Unlock()
}

func (s *UserStore) SetLoading(v bool) {
	s.mu.Lock()
	s.state.setLoading(v)
	s.mu.Unlock()
}

func (s *UserStore) SetError(msg string) {
	s.mu.Lock()
	s.state.setError(msg)
	s.mu.Unlock()
}

func (s *UserStore) Reset() {
	s.mu.Lock()
	s.state = InitialUserState()
	s.mu.Unlock()
}

func (s *UserStore) State() UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if s.state.User != nil {
		u := *s.state.User
		st.User = &u
	}
	return st
}

func (s *UserStore) Snapshot() ([]byte, error) {
	return json.Marshal(s.State())
}

func (s *UserStore) Restore(data []byte) error {
	var st UserState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = UserState{User: st.User}
	s.mu.Unlock()
	return nil
}
