package domain

import (
	"math"
	"sort"
	"time"
)

// Quotation is one supplier's price for one RFQ item at a point in time.
type Quotation struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	OrgID      string    `json:"org_id" gorm:"index;not null"`
	ProjectID  string    `json:"project_id" gorm:"index;not null"`
	RFQItemID  string    `json:"rfq_item_id" gorm:"index:idx_item_supplier;not null"`
	SupplierID string    `json:"supplier_id" gorm:"index:idx_item_supplier;not null"`
	EmailID    string    `json:"email_id,omitempty"`
	UnitPrice  float64   `json:"unit_price"`
	Currency   string    `json:"currency"`
	LeadTime   string    `json:"lead_time,omitempty"`
	Remarks    string    `json:"remarks,omitempty"`
	QuotedAt   time.Time `json:"quoted_at"`
}

func (q Quotation) EntityID() string { return q.ID }

// HistoryEntry is a quotation annotated with its change against the previous
// quote for the same item and supplier.
type HistoryEntry struct {
	Quotation
	PriceChange   float64 `json:"price_change"`
	PercentChange float64 `json:"percent_change"`
}

// BuildHistory orders quotes newest first and computes each entry's price
// change against the quote that chronologically preceded it. The oldest entry
// has no predecessor and carries a zero change.
func BuildHistory(quotes []Quotation) []HistoryEntry {
	sorted := make([]Quotation, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].QuotedAt.After(sorted[j].QuotedAt)
	})

	history := make([]HistoryEntry, len(sorted))
	for i, q := range sorted {
		entry := HistoryEntry{Quotation: q}
		if i+1 < len(sorted) {
			prev := sorted[i+1].UnitPrice
			entry.PriceChange = round2(q.UnitPrice - prev)
			if prev != 0 {
				entry.PercentChange = round2((q.UnitPrice - prev) / prev * 100)
			}
		}
		history[i] = entry
	}
	return history
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
