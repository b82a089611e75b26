package handler

import (
	"designhive/middleware"
	"designhive/service"
	"designhive/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc *service.UserService
}

func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListAll 所有用户摘要（前端用来构建 邮箱->用户名 映射和推荐列表）
func (h *UserHandler) ListAll(c *gin.Context) {
	users, err := h.userSvc.ListAll()
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.SuccessResponse(c, users)
}

// GetProfile 按邮箱查资料
func (h *UserHandler) GetProfile(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		utils.BadRequest(c, "email is required")
		return
	}

	user, err := h.userSvc.GetByEmail(email)
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}
	utils.SuccessResponse(c, user)
}

// UpdateProfile 更新资料（只允许更新自己的）
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	var update service.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := h.userSvc.UpdateProfile(email, update)
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}
	utils.SuccessWithMessage(c, "Profile updated successfully", user)
}
