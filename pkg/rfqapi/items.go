package rfqapi

import (
	"context"
	"io"
	"net/http"
	"net/url"

	rfqdomain "smartrfq/internal/rfq/domain"
	rfqdto "smartrfq/internal/rfq/dto"
)

func projectPath(projectID, sub string) string {
	return "/api/projects/" + url.PathEscape(projectID) + sub
}

func (c *Client) ListItems(ctx context.Context, projectID string) ([]rfqdomain.Part, error) {
	return getList[rfqdomain.Part](ctx, c, "ListItems", projectPath(projectID, "/items"), "items", nil)
}

func (c *Client) CreateItem(ctx context.Context, projectID string, req rfqdto.CreateItemRequest) (*rfqdomain.Part, error) {
	return sendJSON[rfqdomain.Part](ctx, c, "CreateItem", http.MethodPost, projectPath(projectID, "/items"), "item", req)
}

func (c *Client) CreateItems(ctx context.Context, projectID string, items []rfqdto.CreateItemRequest) ([]rfqdomain.Part, error) {
	r, err := jsonRequest(http.MethodPost, projectPath(projectID, "/items/bulk"), rfqdto.BulkCreateItemsRequest{Items: items})
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, "CreateItems", r)
	if err != nil {
		return nil, err
	}
	return decodeList[rfqdomain.Part](c, body, "items"), nil
}

// ImportItemsCSV uploads a CSV parts list. Rows that fail validation are
// reported in the result rather than failing the whole import.
func (c *Client) ImportItemsCSV(ctx context.Context, projectID, filename string, data io.Reader) (*rfqdto.ImportResult, error) {
	r, err := multipartRequest(http.MethodPost, projectPath(projectID, "/items/import"), nil, "file",
		[]Upload{{Name: filename, ContentType: "text/csv", Data: data}})
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, "ImportItemsCSV", r)
	if err != nil {
		return nil, err
	}
	return decodeOne[rfqdto.ImportResult](body, "result")
}

func (c *Client) UpdateItem(ctx context.Context, id string, patch rfqdomain.PartPatch) (*rfqdomain.Part, error) {
	return sendJSON[rfqdomain.Part](ctx, c, "UpdateItem", http.MethodPatch, "/api/items/"+url.PathEscape(id), "item", patch)
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.send(ctx, "DeleteItem", http.MethodDelete, "/api/items/"+url.PathEscape(id), nil)
}

func (c *Client) DeleteItems(ctx context.Context, ids []string) (int, error) {
	res, err := sendJSON[rfqdto.BatchDeleteResponse](ctx, c, "DeleteItems", http.MethodPost, "/api/items/batch-delete", "result", rfqdto.BatchDeleteRequest{IDs: ids})
	if err != nil {
		return 0, err
	}
	return res.Deleted, nil
}

func (c *Client) ListFiles(ctx context.Context, projectID string) ([]rfqdomain.File, error) {
	return getList[rfqdomain.File](ctx, c, "ListFiles", projectPath(projectID, "/files"), "files", nil)
}

func (c *Client) UploadFile(ctx context.Context, projectID string, upload Upload) (*rfqdomain.File, error) {
	r, err := multipartRequest(http.MethodPost, projectPath(projectID, "/files"), nil, "file", []Upload{upload})
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, "UploadFile", r)
	if err != nil {
		return nil, err
	}
	return decodeOne[rfqdomain.File](body, "file")
}

func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.send(ctx, "DeleteFile", http.MethodDelete, "/api/files/"+url.PathEscape(id), nil)
}
