package dto

import (
	"time"

	quotationdomain "smartrfq/internal/quotation/domain"
)

type CreateQuotationRequest struct {
	RFQItemID  string     `json:"rfq_item_id" binding:"required"`
	SupplierID string     `json:"supplier_id" binding:"required"`
	EmailID    string     `json:"email_id"`
	UnitPrice  float64    `json:"unit_price" binding:"gte=0"`
	Currency   string     `json:"currency"`
	LeadTime   string     `json:"lead_time"`
	Remarks    string     `json:"remarks"`
	QuotedAt   *time.Time `json:"quoted_at"`
}

type QuotationsResponse struct {
	Quotations []*quotationdomain.Quotation `json:"quotations"`
}

type HistoryResponse struct {
	History []quotationdomain.HistoryEntry `json:"history"`
}

// ExtractResponse lists the quotations stored from a conversation and the
// item numbers that were quoted but matched no RFQ item.
type ExtractResponse struct {
	Quotations []*quotationdomain.Quotation `json:"quotations"`
	Unmatched  []int                        `json:"unmatched"`
}
