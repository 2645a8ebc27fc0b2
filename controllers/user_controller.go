package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/bistro-orders-api/services"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name string `json:"name" binding:"required"`
}

// UserController serves the current user's profile
type UserController struct {
	auth *services.AuthService
}

// NewUserController creates a user controller
func NewUserController(auth *services.AuthService) *UserController {
	return &UserController{auth: auth}
}

// GetMyProfile handles GET /api/v1/auth/me - gets current user's profile
func (uc *UserController) GetMyProfile(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	user, err := uc.auth.Me(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err, "USER_NOT_FOUND")
		return
	}

	respondData(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/auth/me - updates current user's display name
func (uc *UserController) UpdateMyProfile(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.auth.UpdateProfile(c.Request.Context(), caller.UserID, req.Name)
	if err != nil {
		respondError(c, err, "USER_NOT_FOUND")
		return
	}

	respondData(c, http.StatusOK, user)
}
