package delivery

import (
	"net/http"

	authdelivery "smartrfq/internal/auth/delivery"
	quotationdto "smartrfq/internal/quotation/dto"
	"smartrfq/internal/quotation/usecase"
	rfqusecase "smartrfq/internal/rfq/usecase"
	"smartrfq/pkg/apierr"

	"github.com/gin-gonic/gin"
)

type QuotationHandler struct {
	quotationUsecase usecase.QuotationUsecase
}

func NewQuotationHandler(quotationUsecase usecase.QuotationUsecase) *QuotationHandler {
	return &QuotationHandler{quotationUsecase: quotationUsecase}
}

// GET /api/projects/:id/quotations
func (h *QuotationHandler) ListQuotations(c *gin.Context) {
	quotes, err := h.quotationUsecase.ListQuotations(c.GetString(authdelivery.OrgIDKey), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quotationdto.QuotationsResponse{Quotations: quotes})
}

// POST /api/projects/:id/quotations
func (h *QuotationHandler) CreateQuotation(c *gin.Context) {
	var req quotationdto.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := h.quotationUsecase.CreateQuotation(c.GetString(authdelivery.OrgIDKey), c.Param("id"), &req)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, q)
}

// GET /api/quotations/history?item_id=&supplier_id=
func (h *QuotationHandler) History(c *gin.Context) {
	history, err := h.quotationUsecase.History(c.GetString(authdelivery.OrgIDKey), c.Query("item_id"), c.Query("supplier_id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quotationdto.HistoryResponse{History: history})
}

// POST /api/conversations/:id/extract
func (h *QuotationHandler) ExtractFromConversation(c *gin.Context) {
	res, err := h.quotationUsecase.ExtractFromConversation(c.Request.Context(), c.GetString(authdelivery.OrgIDKey), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/projects/:id/quotations/import-image
func (h *QuotationHandler) ImportImage(c *gin.Context) {
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

	file, err := h.quotationUsecase.ImportImage(c.Request.Context(), c.GetString(authdelivery.OrgIDKey), c.Param("id"), c.PostForm("supplier_id"), rfqusecase.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        f,
	})
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, file)
}
