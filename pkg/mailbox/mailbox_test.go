package mailbox

import (
	"context"
	"errors"
	"sync"
	"testing"

	"smartrfq/pkg/logger"
	"smartrfq/pkg/mailparse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailbox struct {
	msgs   []RawMessage
	seen   []uint32
	closed bool
}

func (m *fakeMailbox) FetchUnseen(context.Context) ([]RawMessage, error) { return m.msgs, nil }
func (m *fakeMailbox) MarkSeen(uids []uint32) error {
	m.seen = append(m.seen, uids...)
	return nil
}
func (m *fakeMailbox) Close() error {
	m.closed = true
	return nil
}

type recordingHandler struct {
	mu       sync.Mutex
	subjects []string
	failOn   string
}

func (h *recordingHandler) HandleInbound(_ context.Context, msg *mailparse.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if msg.Subject == h.failOn {
		return errors.New("db down")
	}
	h.subjects = append(h.subjects, msg.Subject)
	return nil
}

type countingOutcomes map[string]int

func (c countingOutcomes) Observe(outcome string) { c[outcome]++ }

func raw(subject string) []byte {
	return []byte("From: s@supplier.test\r\nSubject: " + subject + "\r\nContent-Type: text/plain\r\n\r\nbody\r\n")
}

func TestPollOnce_MarksHandledMessagesSeen(t *testing.T) {
	mb := &fakeMailbox{msgs: []RawMessage{
		{UID: 1, Body: raw("first")},
		{UID: 2, Body: raw("broken")},
		{UID: 3, Body: raw("third")},
	}}
	h := &recordingHandler{failOn: "broken"}
	outcomes := countingOutcomes{}
	p := NewPoller(func(context.Context) (Mailbox, error) { return mb, nil }, h, 0, outcomes, logger.Nop())

	n, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint32{1, 3}, mb.seen)
	assert.Equal(t, []string{"first", "third"}, h.subjects)
	assert.Equal(t, 1, outcomes["failed"])
	assert.Equal(t, 2, outcomes["handled"])
	assert.True(t, mb.closed)
}

func TestPollOnce_DialFailure(t *testing.T) {
	p := NewPoller(func(context.Context) (Mailbox, error) { return nil, errors.New("refused") }, &recordingHandler{}, 0, nil, logger.Nop())
	_, err := p.PollOnce(context.Background())
	assert.ErrorContains(t, err, "refused")
}
