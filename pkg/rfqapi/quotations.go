package rfqapi

import (
	"context"
	"net/http"
	"net/url"

	quotationdomain "smartrfq/internal/quotation/domain"
	quotationdto "smartrfq/internal/quotation/dto"
	rfqdomain "smartrfq/internal/rfq/domain"
)

func (c *Client) ListQuotations(ctx context.Context, projectID string) ([]quotationdomain.Quotation, error) {
	return getList[quotationdomain.Quotation](ctx, c, "ListQuotations", projectPath(projectID, "/quotations"), "quotations", nil)
}

func (c *Client) CreateQuotation(ctx context.Context, projectID string, req quotationdto.CreateQuotationRequest) (*quotationdomain.Quotation, error) {
	return sendJSON[quotationdomain.Quotation](ctx, c, "CreateQuotation", http.MethodPost, projectPath(projectID, "/quotations"), "quotation", req)
}

// QuotationHistory returns the newest-first price history of one item from
// one supplier.
func (c *Client) QuotationHistory(ctx context.Context, itemID, supplierID string) ([]quotationdomain.HistoryEntry, error) {
	q := url.Values{}
	q.Set("item_id", itemID)
	q.Set("supplier_id", supplierID)
	return getList[quotationdomain.HistoryEntry](ctx, c, "QuotationHistory", "/api/quotations/history", "history", q)
}

func (c *Client) ExtractQuotations(ctx context.Context, conversationID string) (*quotationdto.ExtractResponse, error) {
	return sendJSON[quotationdto.ExtractResponse](ctx, c, "ExtractQuotations", http.MethodPost, conversationPath(conversationID, "/extract"), "result", nil)
}

// ImportQuotationImage uploads a scanned or photographed quotation. The server
// stores it as an RFQ file awaiting processing.
func (c *Client) ImportQuotationImage(ctx context.Context, projectID, supplierID string, image Upload) (*rfqdomain.File, error) {
	r, err := multipartRequest(http.MethodPost, projectPath(projectID, "/quotations/import-image"),
		map[string]string{"supplier_id": supplierID}, "file", []Upload{image})
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, "ImportQuotationImage", r)
	if err != nil {
		return nil, err
	}
	return decodeOne[rfqdomain.File](body, "file")
}
