package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/lzydiary/internal/middleware"
	"github.com/weiwangfds/lzydiary/internal/response"
	"github.com/weiwangfds/lzydiary/internal/service/auth"
	"github.com/weiwangfds/lzydiary/internal/service/lifecycle"
)

// AuthHandler 注册、登录、会话和删除账户
type AuthHandler struct {
	auth        *auth.Service
	coordinator *lifecycle.Coordinator
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService *auth.Service, coordinator *lifecycle.Coordinator) *AuthHandler {
	return &AuthHandler{auth: authService, coordinator: coordinator}
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp 注册
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req auth.SignUpInput
	if !bindJSON(c, &req) {
		return
	}
	account, err := h.auth.SignUp(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, account)
}

// SignIn 登录，返回访问令牌
// @Router /api/v1/auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password,
		c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, token)
}

// Session 当前会话
// @Router /api/v1/auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		currentAccount(c)
		return
	}
	response.Success(c, identity)
}

// SignOut 注销当前会话
// @Router /api/v1/auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		currentAccount(c)
		return
	}
	if err := h.auth.SignOut(c.Request.Context(), identity.SessionID); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteAccount 删除当前账户和它的全部数据
// @Router /api/v1/account [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	if err := h.coordinator.DeleteAccount(c.Request.Context(), accountID); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}
