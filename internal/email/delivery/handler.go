package delivery

import (
	"mime/multipart"
	"net/http"

	authdelivery "smartrfq/internal/auth/delivery"
	emaildto "smartrfq/internal/email/dto"
	"smartrfq/internal/email/usecase"
	"smartrfq/pkg/apierr"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	emailUsecase usecase.EmailUsecase
}

func NewEmailHandler(emailUsecase usecase.EmailUsecase) *EmailHandler {
	return &EmailHandler{
		emailUsecase: emailUsecase,
	}
}

func senderName(c *gin.Context) string {
	if user := authdelivery.CurrentUser(c); user != nil {
		return user.Name
	}
	return ""
}

// GET /api/projects/:id/conversations
func (h *EmailHandler) ListConversations(c *gin.Context) {
	convs, err := h.emailUsecase.ListConversations(c.GetString(authdelivery.OrgIDKey), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, emaildto.ConversationsResponse{Conversations: convs})
}

// POST /api/projects/:id/conversations
func (h *EmailHandler) StartConversation(c *gin.Context) {
	var req emaildto.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.emailUsecase.StartConversation(c.Request.Context(), c.GetString(authdelivery.OrgIDKey), c.Param("id"), senderName(c), &req)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/conversations/:id/emails
func (h *EmailHandler) ListEmails(c *gin.Context) {
	emails, err := h.emailUsecase.ListEmails(c.GetString(authdelivery.OrgIDKey), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, emaildto.EmailsResponse{Emails: emails})
}

// POST /api/conversations/:id/emails
func (h *EmailHandler) SendEmail(c *gin.Context) {
	var req emaildto.SendEmailRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uploads := make([]usecase.Upload, 0, len(req.Files))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range req.Files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opened = append(opened, f)
		uploads = append(uploads, usecase.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        f,
		})
	}

	email, err := h.emailUsecase.SendEmail(c.Request.Context(), c.GetString(authdelivery.OrgIDKey), c.Param("id"), senderName(c), usecase.SendEmailInput{
		Subject:     req.Subject,
		Body:        req.Body,
		Attachments: uploads,
	})
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, email)
}

// PATCH /api/conversations/:id/read
func (h *EmailHandler) MarkRead(c *gin.Context) {
	conv, err := h.emailUsecase.MarkRead(c.GetString(authdelivery.OrgIDKey), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, conv)
}
