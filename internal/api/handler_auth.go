package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"school-resource-backend/internal/auth"
	"school-resource-backend/internal/model"
	"school-resource-backend/internal/mw"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues an opaque bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var u model.User
	err := h.store.DB().WithContext(c.Request.Context()).
		Where("username = ?", req.Username).
		First(&u).Error
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		// Same response for unknown user and wrong password.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token := uuid.NewString()
	if err := h.sessions.Create(c.Request.Context(), token, &u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

// Logout revokes the caller's session token.
func (h *Handler) Logout(c *gin.Context) {
	if token := mw.BearerToken(c.Request); token != "" {
		_ = h.sessions.Delete(c.Request.Context(), token)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Whoami returns the authenticated caller's account.
func (h *Handler) Whoami(c *gin.Context) {
	userID, ok := mw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var u model.User
	if err := h.store.DB().WithContext(c.Request.Context()).First(&u, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, u)
}
