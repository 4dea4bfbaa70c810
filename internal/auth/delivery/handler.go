package delivery

import (
	"net/http"

	authdto "smartrfq/internal/auth/dto"
	"smartrfq/internal/auth/usecase"
	"smartrfq/pkg/apierr"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// Me returns the caller's mirrored user.
// GET /api/users/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUsecase.GetUser(c.GetString(UserIDKey))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// SyncUser reconciles the identity provider's view of the caller into the
// user mirror. The middleware already did the work; this returns the result.
// POST /api/users/sync
func (h *AuthHandler) SyncUser(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// POST /api/fcm/register
func (h *AuthHandler) RegisterDevice(c *gin.Context) {
	var req authdto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.authUsecase.RegisterDevice(c.GetString(UserIDKey), &req); err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device registered"})
}

// DELETE /api/fcm/:token
func (h *AuthHandler) UnregisterDevice(c *gin.Context) {
	if err := h.authUsecase.UnregisterDevice(c.GetString(UserIDKey), c.Param("token")); err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device unregistered"})
}
