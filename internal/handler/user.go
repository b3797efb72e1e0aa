package handler

import (
	"net/http"
	"strconv"

	"github.com/ftechnology/backend/internal/model"
	"github.com/ftechnology/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *service.UsersService
}

func NewUserHandler(svc *service.UsersService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateProfile godoc
// @Summary Update profile fields
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} model.UserProfile
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updated, err := h.svc.UpdateProfile(c.Request.Context(), user.ID, req)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewUserProfile(updated))
}

// UpdateAvatar godoc
// @Summary Set the avatar URL
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpdateAvatarRequest true "Avatar URL"
// @Success 200 {object} model.UserProfile
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/users/avatar [put]
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updated, err := h.svc.UpdateAvatar(c.Request.Context(), user.ID, req.AvatarURL)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewUserProfile(updated))
}

// RemoveAvatar godoc
// @Summary Clear the avatar
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserProfile
// @Failure 401 {object} model.ErrorResponse
// @Router /api/users/avatar [delete]
func (h *UserHandler) RemoveAvatar(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	updated, err := h.svc.RemoveAvatar(c.Request.Context(), user.ID)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewUserProfile(updated))
}

// LoginHistory godoc
// @Summary List recent logins
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries (default 5)"
// @Success 200 {array} model.LoginEventResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/users/login-history [get]
func (h *UserHandler) LoginHistory(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.svc.LoginHistory(c.Request.Context(), user.ID, limit)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	out := make([]model.LoginEventResponse, 0, len(events))
	for i := range events {
		out = append(out, model.NewLoginEventResponse(&events[i]))
	}
	c.JSON(http.StatusOK, out)
}

// ChangePassword godoc
// @Summary Change the account password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/users/change-password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), user.ID, req); err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "Password updated"})
}
