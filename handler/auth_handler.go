package handler

import (
	"time"

	"designhive/middleware"
	"designhive/service"
	"designhive/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userSvc  *service.UserService
	tokenTTL time.Duration
}

func NewAuthHandler(userSvc *service.UserService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{userSvc: userSvc, tokenTTL: tokenTTL}
}

// Register 注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := h.userSvc.Register(req.Email, req.Username, req.Password)
	if err != nil {
		utils.Conflict(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "registered successfully", user)
}

// Login 登录，签发 JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := h.userSvc.Authenticate(req.Email, req.Password)
	if err != nil {
		utils.Unauthorized(c, err.Error())
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, h.tokenTTL)
	if err != nil {
		utils.InternalServerError(c, "failed to issue token")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout 登出：把 token 加入黑名单直到过期
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenVal, _ := c.Get("token")
	expVal, _ := c.Get("token_expires_at")

	token, _ := tokenVal.(string)
	expiresAt, _ := expVal.(time.Time)

	if token != "" {
		if err := middleware.RevokeToken(token, expiresAt); err != nil {
			utils.InternalServerError(c, "failed to revoke token")
			return
		}
	}

	utils.SuccessWithMessage(c, "Logged out", nil)
}
