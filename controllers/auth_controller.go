package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/bistro-orders-api/services"
)

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token for rotation or logout
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthController serves registration and token endpoints
type AuthController struct {
	auth *services.AuthService
}

// NewAuthController creates an auth controller
func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Register handles POST /api/v1/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondData(c, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, err := ac.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondData(c, http.StatusOK, pair)
}

// Refresh handles POST /api/v1/auth/refresh
func (ac *AuthController) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, err := ac.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondData(c, http.StatusOK, pair)
}

// Logout handles POST /api/v1/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ac.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}
