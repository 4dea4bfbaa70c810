// Package mailparse turns raw inbound RFC 5322 messages into the fields the
// importer needs.
package mailparse

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// maxAttachmentSize caps each attachment read into memory.
const maxAttachmentSize = 20 << 20

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
	MessageID   string
	InReplyTo   string
	From        Address
	To          []Address
	Subject     string
	Date        time.Time
	Text        string
	Attachments []Attachment
}

// Parse reads one message. The plain-text part is preferred; an HTML-only
// message is reduced to its text.
func Parse(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("read message: %w", err)
	}
	defer mr.Close()

	out := &Message{}
	if id, err := mr.Header.MessageID(); err == nil {
		out.MessageID = id
	}
	if ids, err := mr.Header.MsgIDList("In-Reply-To"); err == nil && len(ids) > 0 {
		out.InReplyTo = ids[0]
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		out.From = Address{Name: from[0].Name, Email: strings.ToLower(from[0].Address)}
	}
	if to, err := mr.Header.AddressList("To"); err == nil {
		for _, a := range to {
			out.To = append(out.To, Address{Name: a.Name, Email: strings.ToLower(a.Address)})
		}
	}
	out.Subject, _ = mr.Header.Subject()
	if d, err := mr.Header.Date(); err == nil {
		out.Date = d
	}
	if out.Date.IsZero() {
		out.Date = time.Now()
	}

	var plain, htmlText string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return nil, fmt.Errorf("read part: %w", err)
		}
		if p == nil {
			continue
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := h.ContentType()
			b, err := io.ReadAll(p.Body)
			if err != nil {
				return nil, fmt.Errorf("read body: %w", err)
			}
			switch ct {
			case "text/plain", "":
				if plain == "" {
					plain = string(b)
				}
			case "text/html":
				if htmlText == "" {
					htmlText = string(b)
				}
			}
		case *mail.AttachmentHeader:
			name, _ := h.Filename()
			ct, _, _ := h.ContentType()
			b, err := io.ReadAll(io.LimitReader(p.Body, maxAttachmentSize+1))
			if err != nil {
				return nil, fmt.Errorf("read attachment %s: %w", name, err)
			}
			if len(b) > maxAttachmentSize {
				return nil, fmt.Errorf("attachment %s exceeds %d bytes", name, maxAttachmentSize)
			}
			out.Attachments = append(out.Attachments, Attachment{Name: name, ContentType: ct, Data: b})
		}
	}

	switch {
	case plain != "":
		out.Text = strings.TrimSpace(plain)
	case htmlText != "":
		out.Text = htmlToText(htmlText)
	}
	return out, nil
}
