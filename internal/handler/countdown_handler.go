package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/lzydiary/internal/response"
	"github.com/weiwangfds/lzydiary/internal/service/countdown"
)

// CountdownHandler 倒数日和纪念日
type CountdownHandler struct {
	countdowns *countdown.Service
}

// NewCountdownHandler 创建倒数日处理器
func NewCountdownHandler(countdowns *countdown.Service) *CountdownHandler {
	return &CountdownHandler{countdowns: countdowns}
}

type countdownRequest struct {
	Title      string `json:"title" binding:"required"`
	TargetDate string `json:"target_date" binding:"required"`
	// Type countdown 或 anniversary，缺省为 anniversary
	Type string `json:"type"`
}

// List 按目标日期列出
// @Router /api/v1/countdowns [get]
func (h *CountdownHandler) List(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	items, err := h.countdowns.List(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, items)
}

// Create 新建
// @Router /api/v1/countdowns [post]
func (h *CountdownHandler) Create(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	var req countdownRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.countdowns.Create(c.Request.Context(), userID, req.Title, req.TargetDate, req.Type)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, item)
}

// Delete 删除
// @Router /api/v1/countdowns/{id} [delete]
func (h *CountdownHandler) Delete(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	if err := h.countdowns.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}
