// Package mailbox polls an IMAP mailbox for unseen supplier replies.
package mailbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"smartrfq/pkg/logger"
	"smartrfq/pkg/mailparse"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// RawMessage is an unseen message as fetched from the server.
type RawMessage struct {
	UID  uint32
	Body []byte
}

// Mailbox is the part of an IMAP session the poller needs.
type Mailbox interface {
	FetchUnseen(ctx context.Context) ([]RawMessage, error)
	MarkSeen(uids []uint32) error
	Close() error
}

// Dialer opens a fresh mailbox session.
type Dialer func(ctx context.Context) (Mailbox, error)

// Handler consumes parsed messages. A returned error leaves the message
// unseen so the next poll retries it.
type Handler interface {
	HandleInbound(ctx context.Context, msg *mailparse.Message) error
}

// Outcomes counts what happened to each fetched message.
type Outcomes interface {
	Observe(outcome string)
}

type Poller struct {
	dial     Dialer
	handler  Handler
	interval time.Duration
	outcomes Outcomes
	log      *logger.Logger
}

func NewPoller(dial Dialer, handler Handler, interval time.Duration, outcomes Outcomes, log *logger.Logger) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		dial:     dial,
		handler:  handler,
		interval: interval,
		outcomes: outcomes,
		log:      log.With("component", "IMAPPoller"),
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("mailbox poller started", "interval", p.interval.String())
	for {
		if _, err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
			p.log.Error("mailbox poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			p.log.Info("mailbox poller stopped")
			return
		case <-ticker.C:
		}
	}
}

// PollOnce handles every unseen message and returns how many were handled.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	mb, err := p.dial(ctx)
	if err != nil {
		return 0, fmt.Errorf("dial mailbox: %w", err)
	}
	defer mb.Close()

	msgs, err := mb.FetchUnseen(ctx)
	if err != nil {
		return 0, err
	}

	var seen []uint32
	for _, raw := range msgs {
		parsed, err := mailparse.Parse(bytes.NewReader(raw.Body))
		if err != nil {
			// An unparseable message would fail on every poll.
			p.log.Warn("dropping unparseable message", "uid", raw.UID, "error", err)
			p.observe("unparseable")
			seen = append(seen, raw.UID)
			continue
		}
		if err := p.handler.HandleInbound(ctx, parsed); err != nil {
			p.log.Error("inbound message not imported", "uid", raw.UID, "error", err)
			p.observe("failed")
			continue
		}
		p.observe("handled")
		seen = append(seen, raw.UID)
	}

	if len(seen) > 0 {
		if err := mb.MarkSeen(seen); err != nil {
			return len(seen), fmt.Errorf("mark seen: %w", err)
		}
	}
	return len(seen), nil
}

func (p *Poller) observe(outcome string) {
	if p.outcomes != nil {
		p.outcomes.Observe(outcome)
	}
}

// session is a Mailbox backed by a go-imap client with INBOX selected.
type session struct {
	c *client.Client
}

// TLSDialer logs in over implicit TLS and selects INBOX.
func TLSDialer(addr, username, password string) Dialer {
	return func(ctx context.Context) (Mailbox, error) {
		c, err := client.DialTLS(addr, nil)
		if err != nil {
			return nil, err
		}
		if err := c.Login(username, password); err != nil {
			c.Logout()
			return nil, fmt.Errorf("login: %w", err)
		}
		if _, err := c.Select(imap.InboxName, false); err != nil {
			c.Logout()
			return nil, fmt.Errorf("select inbox: %w", err)
		}
		return &session{c: c}, nil
	}
}

func (s *session) FetchUnseen(ctx context.Context) ([]RawMessage, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := s.c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("search unseen: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.c.UidFetch(seqset, items, messages)
	}()

	var out []RawMessage
	for msg := range messages {
		if ctx.Err() != nil {
			continue
		}
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		b, err := io.ReadAll(body)
		if err != nil {
			continue
		}
		out = append(out, RawMessage{UID: msg.Uid, Body: b})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return out, ctx.Err()
}

func (s *session) MarkSeen(uids []uint32) error {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	flags := []interface{}{imap.SeenFlag}
	return s.c.UidStore(seqset, imap.FormatFlagsOp(imap.AddFlags, true), flags, nil)
}

func (s *session) Close() error {
	return s.c.Logout()
}
