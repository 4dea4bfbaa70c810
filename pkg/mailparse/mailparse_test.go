package mailparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multipartReply = "From: Sales Team <Sales@Supplier.test>\r\n" +
	"To: rfq@acme.test\r\n" +
	"Subject: Re: RFQ: Gearbox\r\n" +
	"Message-ID: <reply-1@supplier.test>\r\n" +
	"In-Reply-To: <rfq-1@acme.test>\r\n" +
	"Date: Mon, 02 Mar 2026 10:00:00 +0000\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=XYZ\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"[ITEM-1] description: shaft, price: $12.50, qty: 4\r\n" +
	"--XYZ\r\n" +
	"Content-Type: application/pdf\r\n" +
	"Content-Disposition: attachment; filename=\"quote.pdf\"\r\n" +
	"\r\n" +
	"%PDF-1.4\r\n" +
	"--XYZ--\r\n"

func TestParse_Multipart(t *testing.T) {
	msg, err := Parse(strings.NewReader(multipartReply))
	require.NoError(t, err)

	assert.Equal(t, "reply-1@supplier.test", msg.MessageID)
	assert.Equal(t, "rfq-1@acme.test", msg.InReplyTo)
	assert.Equal(t, "sales@supplier.test", msg.From.Email)
	assert.Equal(t, "Sales Team", msg.From.Name)
	require.Len(t, msg.To, 1)
	assert.Equal(t, "Re: RFQ: Gearbox", msg.Subject)
	assert.Equal(t, 2026, msg.Date.Year())
	assert.Contains(t, msg.Text, "price: $12.50")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "quote.pdf", msg.Attachments[0].Name)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
}

func TestParse_HTMLOnly(t *testing.T) {
	raw := "From: a@supplier.test\r\n" +
		"Subject: quote\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>[ITEM-2] price: 3 &amp; qty: 10</p>\r\n"

	msg, err := Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "[ITEM-2] price: 3 & qty: 10", msg.Text)
	assert.False(t, msg.Date.IsZero())
}

func TestParse_HTMLOnlyDropsStylesAndKeepsLines(t *testing.T) {
	raw := "From: a@supplier.test\r\n" +
		"Subject: quote\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><head><style>p > span { color: red; }</style></head><body>" +
		"<p title=\"a > b\">[ITEM-1] price: $4.20</p>" +
		"<script>var x = \"<p>[ITEM-9] price: 1</p>\";</script>" +
		"<div>[ITEM-2] price: 3 &lt; 5<br>qty: 10</div></body></html>\r\n"

	msg, err := Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "[ITEM-1] price: $4.20\n[ITEM-2] price: 3 < 5\nqty: 10", msg.Text)
}

func TestHTMLToText_TableCells(t *testing.T) {
	got := htmlToText("<table><tr><td>[ITEM-3]</td><td>price: 7</td></tr><tr><td>[ITEM-4]</td><td>price: 8</td></tr></table>")
	assert.Equal(t, "[ITEM-3] price: 7\n[ITEM-4] price: 8", got)
}
