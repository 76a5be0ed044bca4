package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/lzydiary/internal/response"
	"github.com/weiwangfds/lzydiary/internal/service/collection"
	"github.com/weiwangfds/lzydiary/internal/service/lifecycle"
)

// CollectionHandler 相册和笔记本
type CollectionHandler struct {
	collections *collection.Service
	coordinator *lifecycle.Coordinator
}

// NewCollectionHandler 创建相册和笔记本处理器
func NewCollectionHandler(collections *collection.Service, coordinator *lifecycle.Coordinator) *CollectionHandler {
	return &CollectionHandler{collections: collections, coordinator: coordinator}
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListAlbums 相册列表，每个相册带最新的若干张图片
// @Router /api/v1/albums [get]
func (h *CollectionHandler) ListAlbums(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	albums, err := h.collections.ListAlbums(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, albums)
}

// AlbumImages 相册的全部图片
// @Router /api/v1/albums/{id}/images [get]
func (h *CollectionHandler) AlbumImages(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	images, err := h.collections.AlbumImages(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, images)
}

// CreateAlbum 新建相册
// @Router /api/v1/albums [post]
func (h *CollectionHandler) CreateAlbum(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	album, err := h.collections.CreateAlbum(c.Request.Context(), userID, req.Name)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, album)
}

// DeleteAlbum 删除相册及其图片，日记保留
// @Router /api/v1/albums/{id} [delete]
func (h *CollectionHandler) DeleteAlbum(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	if err := h.coordinator.DeleteAlbum(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// ListNotebooks 笔记本列表
// @Router /api/v1/notebooks [get]
func (h *CollectionHandler) ListNotebooks(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	notebooks, err := h.collections.ListNotebooks(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, notebooks)
}

// CreateNotebook 新建笔记本
// @Router /api/v1/notebooks [post]
func (h *CollectionHandler) CreateNotebook(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	notebook, err := h.collections.CreateNotebook(c.Request.Context(), userID, req.Name)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, notebook)
}

// DeleteNotebook 删除笔记本，其中的日记保留
// @Router /api/v1/notebooks/{id} [delete]
func (h *CollectionHandler) DeleteNotebook(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	if err := h.coordinator.DeleteNotebook(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}
