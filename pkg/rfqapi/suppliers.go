package rfqapi

import (
	"context"
	"net/http"
	"net/url"

	supplierdomain "smartrfq/internal/supplier/domain"
	supplierdto "smartrfq/internal/supplier/dto"
)

// ListSuppliers lists a project's suppliers, or every supplier of the
// organization when projectID is "global" or empty.
func (c *Client) ListSuppliers(ctx context.Context, projectID string) ([]supplierdomain.Supplier, error) {
	path := "/api/suppliers"
	if projectID != "" && projectID != supplierdomain.GlobalKey {
		path = "/api/projects/" + url.PathEscape(projectID) + "/suppliers"
	}
	return getList[supplierdomain.Supplier](ctx, c, "ListSuppliers", path, "suppliers", nil)
}

func (c *Client) CreateSupplier(ctx context.Context, req supplierdto.CreateSupplierRequest) (*supplierdomain.Supplier, error) {
	return sendJSON[supplierdomain.Supplier](ctx, c, "CreateSupplier", http.MethodPost, "/api/suppliers", "supplier", req)
}

func (c *Client) UpdateSupplier(ctx context.Context, id string, patch supplierdomain.Patch) (*supplierdomain.Supplier, error) {
	return sendJSON[supplierdomain.Supplier](ctx, c, "UpdateSupplier", http.MethodPatch, "/api/suppliers/"+url.PathEscape(id), "supplier", patch)
}

func (c *Client) DeleteSupplier(ctx context.Context, id string) error {
	return c.send(ctx, "DeleteSupplier", http.MethodDelete, "/api/suppliers/"+url.PathEscape(id), nil)
}
