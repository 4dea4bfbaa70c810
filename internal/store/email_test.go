package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "smartrfq/internal/auth/domain"
	emaildomain "smartrfq/internal/email/domain"
)

func TestEmailStore_AddEmailTouchesConversation(t *testing.T) {
	s := NewEmailStore()
	s.SetAll("p1", []emaildomain.Conversation{{ID: "c1", ProjectID: "p1"}})

	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	e := emaildomain.Email{ID: "e1", ConversationID: "c1", Body: "[ITEM-1] price: $3", SentAt: at, Status: emaildomain.StatusReceived}
	s.AddEmail(e)
	s.AddEmail(e)

	require.Len(t, s.Emails("c1"), 1)
	conv := s.List("p1")[0]
	assert.Equal(t, 1, conv.MessageCount)
	assert.Equal(t, 1, conv.UnreadCount)
	assert.Equal(t, at, conv.LastMessageAt)
	assert.Equal(t, "[ITEM-1] price: $3", conv.LastMessage)

	assert.Equal(t, 1, s.MarkRead("c1"))
	assert.Zero(t, s.List("p1")[0].UnreadCount)
}

func TestEmailStore_DeleteDropsEmailsAndSelection(t *testing.T) {
	s := NewEmailStore()
	s.SetAll("p1", []emaildomain.Conversation{{ID: "c1", ProjectID: "p1"}})
	s.SetEmails("c1", []emaildomain.Email{{ID: "e1", ConversationID: "c1"}})
	s.Select("c1")

	assert.Equal(t, 1, s.Delete("c1"))
	assert.False(t, s.HasEmails("c1"))
	assert.Empty(t, s.SelectedConversation())
}

func TestEmailStore_ResetRestoresInitialState(t *testing.T) {
	s := NewEmailStore()
	s.SetAll("p1", []emaildomain.Conversation{{ID: "c1", ProjectID: "p1"}})
	s.SetEmails("c1", []emaildomain.Email{{ID: "e1", ConversationID: "c1"}})
	s.Select("c1")
	s.Reset()
	assert.Equal(t, InitialEmailState(), s.State())
}

func TestEmailStore_StateSharesNoAttachments(t *testing.T) {
	s := NewEmailStore()
	s.SetEmails("c1", []emaildomain.Email{{
		ID:             "e1",
		ConversationID: "c1",
		Attachments:    []emaildomain.Attachment{{ID: "a1", Name: "drawing.pdf"}},
	}})

	st := s.State()
	st.Emails["c1"][0].Attachments[0].Name = "changed.pdf"

	assert.Equal(t, "drawing.pdf", s.Emails("c1")[0].Attachments[0].Name)
}

func TestEmailStore_StaleEmailsDiscarded(t *testing.T) {
	s := NewEmailStore()
	old := s.BeginEmailsLoad("c1")
	cur := s.BeginEmailsLoad("c1")
	assert.False(t, s.SetEmailsIfCurrent("c1", old, []emaildomain.Email{{ID: "old"}}))
	assert.True(t, s.SetEmailsIfCurrent("c1", cur, []emaildomain.Email{{ID: "new"}}))
	assert.Equal(t, "new", s.Emails("c1")[0].ID)
}

func TestUserStore_ReconcileOncePerSession(t *testing.T) {
	s := NewUserStore()
	assert.True(t, s.MarkReconciled())
	assert.False(t, s.MarkReconciled())

	s.SetUser(authdomain.User{ID: "u1", OrgID: "org-1"})
	assert.Equal(t, "org-1", s.OrgID())

	data, err := s.Snapshot()
	require.NoError(t, err)
	restored := NewUserStore()
	require.NoError(t, restored.Restore(data))
	assert.False(t, restored.Reconciled())
	assert.Equal(t, "org-1", restored.OrgID())

	s.Reset()
	assert.Equal(t, InitialUserState(), s.State())
}
