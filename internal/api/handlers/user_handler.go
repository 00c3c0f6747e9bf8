package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clockpro/backend/internal/models"
	"github.com/clockpro/backend/internal/services"
	"github.com/clockpro/backend/internal/utils"
)

type UserHandler struct {
	svc services.UserService
}

func NewUserHandler(svc services.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.svc.Profile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type settingsRequest struct {
	Settings models.UserSettings `json:"settings" binding:"required"`
}

func (h *UserHandler) UpdateSettings(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "UserHandler.UpdateSettings", "invalid request body", err))
		return
	}

	user, err := h.svc.UpdateSettings(c.Request.Context(), userID, req.Settings)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings updated successfully",
		"settings": user.Settings,
	})
}

func (h *UserHandler) Stats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	report, err := h.svc.Stats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": report})
}

type worldClocksRequest struct {
	WorldClocks []models.WorldClock `json:"worldClocks" binding:"required"`
}

func (h *UserHandler) UpdateWorldClocks(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req worldClocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "UserHandler.UpdateWorldClocks", "world clocks must be an array", err))
		return
	}

	user, err := h.svc.UpdateWorldClocks(c.Request.Context(), userID, req.WorldClocks)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "World clocks updated successfully",
		"worldClocks": user.WorldClocks,
	})
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteAccount(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
