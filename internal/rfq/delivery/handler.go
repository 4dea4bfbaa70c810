package delivery

import (
	"net/http"

	authdelivery "smartrfq/internal/auth/delivery"
	rfqdomain "smartrfq/internal/rfq/domain"
	rfqdto "smartrfq/internal/rfq/dto"
	"smartrfq/internal/rfq/usecase"
	"smartrfq/pkg/apierr"

	"github.com/gin-gonic/gin"
)

type RFQHandler struct {
	rfqUsecase usecase.RFQUsecase
}

func NewRFQHandler(rfqUsecase usecase.RFQUsecase) *RFQHandler {
	return &RFQHandler{rfqUsecase: rfqUsecase}
}

// GET /api/projects/:id/items
func (h *RFQHandler) ListItems(c *gin.Context) {
	items, err := h.rfqUsecase.ListItems(c.GetString(authdelivery.OrgIDKey), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rfqdto.ItemsResponse{Items: items})
}

// POST /api/projects/:id/items
func (h *RFQHandler) CreateItem(c *gin.Context) {
	var req rfqdto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.rfqUsecase.CreateItem(c.GetString(authdelivery.OrgIDKey), c.Param("id"), &req)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// POST /api/projects/:id/items/bulk
func (h *RFQHandler) BulkCreateItems(c *gin.Context) {
	var req rfqdto.BulkCreateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := h.rfqUsecase.CreateItems(c.GetString(authdelivery.OrgIDKey), c.Param("id"), req.Items)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rfqdto.ItemsResponse{Items: items})
}

// POST /api/projects/:id/items/import
func (h *RFQHandler) ImportItems(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	result, err := h.rfqUsecase.ImportCSV(c.GetString(authdelivery.OrgIDKey), c.Param("id"), f)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// PATCH /api/items/:id
func (h *RFQHandler) UpdateItem(c *gin.Context) {
	var patch rfqdomain.PartPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.rfqUsecase.UpdateItem(c.GetString(authdelivery.OrgIDKey), c.Param("id"), &patch)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DELETE /api/items/:id
func (h *RFQHandler) DeleteItem(c *gin.Context) {
	if err := h.rfqUsecase.DeleteItem(c.GetString(authdelivery.OrgIDKey), c.Param("id")); err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
}

// POST /api/items/batch-delete
func (h *RFQHandler) BatchDeleteItems(c *gin.Context) {
	var req rfqdto.BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := h.rfqUsecase.DeleteItems(c.GetString(authdelivery.OrgIDKey), req.IDs)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rfqdto.BatchDeleteResponse{Deleted: n})
}

// GET /api/projects/:id/files
func (h *RFQHandler) ListFiles(c *gin.Context) {
	files, err := h.rfqUsecase.ListFiles(c.GetString(authdelivery.OrgIDKey), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rfqdto.FilesResponse{Files: files})
}

// POST /api/projects/:id/files
func (h *RFQHandler) UploadFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	file, err := h.rfqUsecase.UploadFile(c.Request.Context(), c.GetString(authdelivery.OrgIDKey), c.Param("id"), usecase.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        f,
	}, rfqdomain.FileCompleted)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, file)
}

// DELETE /api/files/:id
func (h *RFQHandler) DeleteFile(c *gin.Context) {
	if err := h.rfqUsecase.DeleteFile(c.Request.Context(), c.GetString(authdelivery.OrgIDKey), c.Param("id")); err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}
