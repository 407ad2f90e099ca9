package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"horizon-api/middleware"
	"horizon-api/models"
	"horizon-api/store"
	"horizon-api/utils"
)

// UserHandler serves the session user's profile and the optional TOTP
// second factor.
type UserHandler struct {
	Store store.Store
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.Store.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetupTOTP generates a secret for the user; the secret only becomes
// active once VerifyTOTP confirms a valid code.
func (h *UserHandler) SetupTOTP(c *gin.Context) {
	user, err := h.Store.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	secret, url, err := utils.GenerateTOTPSecret(user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate secret"})
		return
	}

	if err := h.Store.UpdateUserTOTP(c.Request.Context(), user.ID, secret, false); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store secret"})
		return
	}

	c.JSON(http.StatusOK, models.TOTPSetupResponse{Secret: secret, URL: url})
}

// VerifyTOTP confirms the pending secret and enables the second factor.
func (h *UserHandler) VerifyTOTP(c *gin.Context) {
	var req models.VerifyTOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Store.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if user.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "2FA setup not started"})
		return
	}

	if !utils.VerifyTOTP(user.TOTPSecret, req.Code) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
		return
	}

	if err := h.Store.UpdateUserTOTP(c.Request.Context(), user.ID, user.TOTPSecret, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable 2FA"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "2FA enabled"})
}

func (h *UserHandler) DisableTOTP(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.Store.UpdateUserTOTP(c.Request.Context(), userID, "", false); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "2FA disabled"})
}
