package store

import (
	"encoding/json"
	"sync"

	emaildomain "smartrfq/internal/email/domain"
)

const EmailSnapshotKey = "email-storage"

// EmailState keys conversations by project id and emails by conversation id.
type EmailState struct {
	Conversations          map[string][]emaildomain.Conversation `json:"conversations"`
	Emails                 map[string][]emaildomain.Email        `json:"emails"`
	SelectedConversationID string                                `json:"selected_conversation_id,omitempty"`
	Meta
}

func InitialEmailState() EmailState {
	return EmailState{
		Conversations: map[string][]emaildomain.Conversation{},
		Emails:        map[string][]emaildomain.Email{},
	}
}

type EmailStore struct {
	epochGuard
	mu    sync.RWMutex
	state EmailState
	gens  generations
}

func NewEmailStore() *EmailStore {
	return &EmailStore{state: InitialEmailState(), gens: newGenerations()}
}

func (s *EmailStore) SnapshotKey() string { return EmailSnapshotKey }

func conversationsKey(projectID string) string { return "conversations:" + projectID }
func emailsKey(conversationID string) string   { return "emails:" + conversationID }

// SetAll replaces the conversations of one project.
func (s *EmailStore) SetAll(projectID string, conversations []emaildomain.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Conversations[projectID] = copyList(conversations)
	s.state.loaded()
}

func (s *EmailStore) BeginLoad(projectID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens.begin(conversationsKey(projectID))
}

func (s *EmailStore) SetAllIfCurrent(projectID string, gen uint64, conversations []emaildomain.Conversation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gens.isCurrent(conversationsKey(projectID), gen) {
		return false
	}
	s.state.Conversations[projectID] = copyList(conversations)
	s.state.loaded()
	return true
}

func (s *EmailStore) Add(c emaildomain.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Conversations[c.ProjectID] = append(s.state.Conversations[c.ProjectID], c)
}

func (s *EmailStore) Update(id string, apply func(*emaildomain.Conversation)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAll(s.state.Conversations, id, apply)
}

// Delete removes the conversation, its emails and its selection.
func (s *EmailStore) Delete(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range deleteAll(s.state.Conversations, id) {
		total += n
	}
	delete(s.state.Emails, id)
	if s.state.SelectedConversationID == id {
		s.state.SelectedConversationID = ""
	}
	return total
}

func (s *EmailStore) List(projectID string) []emaildomain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyList(s.state.Conversations[projectID])
}

func (s *EmailStore) Has(projectID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Conversations[projectID]) > 0
}

func (s *EmailStore) SetEmails(conversationID string, emails []emaildomain.Email) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Emails[conversationID] = copyList(emails)
	s.state.loaded()
}

func (s *EmailStore) BeginEmailsLoad(conversationID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens.begin(emailsKey(conversationID))
}

func (s *EmailStore) SetEmailsIfCurrent(conversationID string, gen uint64, emails []emaildomain.Email) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gens.isCurrent(emailsKey(conversationID), gen) {
		return false
	}
	s.state.Emails[conversationID] = copyList(emails)
	s.state.loaded()
	return true
}

// AddEmail appends e to its conversation and refreshes the conversation's
// preview and counters.
func (s *EmailStore) AddEmail(e emaildomain.Email) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.state.Emails[e.ConversationID], e.ID) >= 0 {
		return
	}
	s.state.Emails[e.ConversationID] = append(s.state.Emails[e.ConversationID], e)
	updateAll(s.state.Conversations, e.ConversationID, func(c *emaildomain.Conversation) {
		c.Touch(&e)
	})
}

func (s *EmailStore) Emails(conversationID string) []emaildomain.Email {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyList(s.state.Emails[conversationID])
}

func (s *EmailStore) HasEmails(conversationID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Emails[conversationID]) > 0
}

// MarkRead zeroes the unread counter of the conversation.
func (s *EmailStore) MarkRead(conversationID string) int {
	return s.Update(conversationID, func(c *emaildomain.Conversation) { c.UnreadCount = 0 })
}

func (s *EmailStore) Select(conversationID string) {
	s.mu.Lock()
	s.state.SelectedConversationID = conversationID
	s.mu.Unlock()
}

func (s *EmailStore) SelectedConversation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.SelectedConversationID
}

func (s *EmailStore) SetLoading(v bool) {
	s.mu.Lock()
	s.state.setLoading(v)
	s.mu.Unlock()
}

func (s *EmailStore) SetError(msg string) {
	s.mu.Lock()
	s.state.setError(msg)
	s.mu.Unlock()
}

// Reset clears the state and starts a new epoch, so responses to requests
// issued before it are dropped.
func (s *EmailStore) Reset() {
	s.advance(func() {
		s.mu.Lock()
		s.state = InitialEmailState()
		s.gens.reset()
		s.mu.Unlock()
	})
}

func (s *EmailStore) State() EmailState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Conversations = cloneLists(s.state.Conversations)
	st.Emails = cloneLists(s.state.Emails)
	return st
}

func (s *EmailStore) Snapshot() ([]byte, error) {
	return json.Marshal(s.State())
}

func (s *EmailStore) Restore(data []byte) error {
	st := InitialEmailState()
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.Conversations == nil {
		st.Conversations = map[string][]emaildomain.Conversation{}
	}
	if st.Emails == nil {
		st.Emails = map[string][]emaildomain.Email{}
	}
	st.Meta = Meta{}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}
