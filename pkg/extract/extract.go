// Package extract pulls quoted line items out of free-text supplier replies.
//
// An item starts at a token of the form [ITEM-<n>] and runs until the next
// token or the end of the text. Inside an item body the following labels are
// recognised, case-insensitively:
//
//	description: <text up to the next ',' ':' or ';'>
//	price: [$]<decimal>
//	qty: <integer>
//
// A label that is absent leaves the corresponding field nil.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	tokenRe       = regexp.MustCompile(`(?i)\[ITEM-(\d+)\]`)
	descriptionRe = regexp.MustCompile(`(?i)description:\s*([^,:;]*)`)
	priceRe       = regexp.MustCompile(`(?i)price:\s*\$?\s*(\d+(?:\.\d+)?)`)
	qtyRe         = regexp.MustCompile(`(?i)qty:\s*(\d+)`)
)

// Item is one extracted line. Nil fields were not present in the text.
type Item struct {
	Number      int
	Description *string
	UnitPrice   *float64
	Quantity    *int
	Raw         string
}

// Complete reports whether every field was found.
func (i Item) Complete() bool {
	return i.Description != nil && i.UnitPrice != nil && i.Quantity != nil
}

// ExtractItems returns the items of text in order of appearance.
func ExtractItems(text string) []Item {
	locs := tokenRe.FindAllStringSubmatchIndex(text, -1)
	items := make([]Item, 0, len(locs))
	for i, loc := range locs {
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := text[loc[1]:end]
		items = append(items, parseBody(n, body))
	}
	return items
}

func parseBody(n int, body string) Item {
	item := Item{Number: n, Raw: strings.TrimSpace(body)}
	if m := descriptionRe.FindStringSubmatch(body); m != nil {
		if d := strings.TrimSpace(m[1]); d != "" {
			item.Description = &d
		}
	}
	if m := priceRe.FindStringSubmatch(body); m != nil {
		if p, err := strconv.ParseFloat(m[1], 64); err == nil {
			item.UnitPrice = &p
		}
	}
	if m := qtyRe.FindStringSubmatch(body); m != nil {
		if q, err := strconv.Atoi(m[1]); err == nil {
			item.Quantity = &q
		}
	}
	return item
}

// MaxItemNumber returns the largest item number referenced in text, or 0.
func MaxItemNumber(text string) int {
	max := 0
	for _, m := range tokenRe.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max
}

// FormatItemToken renders the token that marks item n in outgoing mail.
func FormatItemToken(n int) string {
	return fmt.Sprintf("[ITEM-%d]", n)
}
