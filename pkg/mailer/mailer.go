// Package mailer composes outgoing RFQ mail and hands it to an SMTP relay.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"time"

	"smartrfq/pkg/logger"

	"github.com/emersion/go-message/mail"
)

type Address struct {
	Name  string
	Email string
}

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type Message struct {
	From        Address
	To          Address
	Subject     string
	Body        string
	InReplyTo   string
	Attachments []Attachment
}

// Sender delivers a message and returns the Message-ID it was sent with.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// Compose renders msg as a MIME message. The generated Message-ID is
// returned alongside the bytes.
func Compose(msg *Message) ([]byte, string, error) {
	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Name: msg.From.Name, Address: msg.From.Email}})
	h.SetAddressList("To", []*mail.Address{{Name: msg.To.Name, Address: msg.To.Email}})
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, "", fmt.Errorf("generate message id: %w", err)
	}
	if msg.InReplyTo != "" {
		h.SetMsgIDList("In-Reply-To", []string{msg.InReplyTo})
	}
	id, err := h.MessageID()
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, "", err
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, "", err
	}
	var th mail.InlineHeader
	th.Set("Content-Type", "text/plain; charset=utf-8")
	w, err := tw.CreatePart(th)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.WriteString(w, msg.Body); err != nil {
		return nil, "", err
	}
	w.Close()
	tw.Close()

	for _, a := range msg.Attachments {
		var ah mail.AttachmentHeader
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		ah.Set("Content-Type", ct)
		ah.SetFilename(a.Name)
		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, "", err
		}
		if _, err := aw.Write(a.Data); err != nil {
			return nil, "", err
		}
		aw.Close()
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), id, nil
}

// SMTP relays mail through a server with PLAIN auth when credentials are set.
type SMTP struct {
	addr     string
	username string
	password string
	log      *logger.Logger
}

func NewSMTP(addr, username, password string, log *logger.Logger) *SMTP {
	return &SMTP{addr: addr, username: username, password: password, log: log.With("component", "SMTP")}
}

func (s *SMTP) Send(ctx context.Context, msg *Message) (string, error) {
	raw, id, err := Compose(msg)
	if err != nil {
		return "", err
	}
	var auth smtp.Auth
	if s.username != "" {
		host, _, err := net.SplitHostPort(s.addr)
		if err != nil {
			return "", fmt.Errorf("smtp addr: %w", err)
		}
		auth = smtp.PlainAuth("", s.username, s.password, host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.addr, auth, msg.From.Email, []string{msg.To.Email}, raw)
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			s.log.Error("smtp delivery failed", "to", msg.To.Email, "error", err)
			return "", fmt.Errorf("send mail: %w", err)
		}
	}
	s.log.Info("mail sent", "message_id", id)
	return id, nil
}

// Log is used when no relay is configured. It composes the message and
// records it in the log instead of delivering it.
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	return &Log{log: log.With("component", "Mailer")}
}

func (l *Log) Send(_ context.Context, msg *Message) (string, error) {
	raw, id, err := Compose(msg)
	if err != nil {
		return "", err
	}
	l.log.Info("smtp not configured, mail not delivered", "message_id", id, "subject", msg.Subject, "bytes", len(raw))
	return id, nil
}
