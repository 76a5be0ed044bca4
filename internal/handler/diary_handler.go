package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/lzydiary/config"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/response"
	"github.com/weiwangfds/lzydiary/internal/service/diary"
	"github.com/weiwangfds/lzydiary/internal/service/lifecycle"
)

// DiaryHandler 日记、草稿和评论
type DiaryHandler struct {
	diaries     *diary.Service
	coordinator *lifecycle.Coordinator
	upload      config.UploadConfig
}

// NewDiaryHandler 创建日记处理器
// 参数:
//   - diaries: 日记查询服务
//   - coordinator: 负责创建、编辑、删除等跨表写操作
//   - upload: 图片数量、大小和类型限制
func NewDiaryHandler(diaries *diary.Service, coordinator *lifecycle.Coordinator, upload config.UploadConfig) *DiaryHandler {
	return &DiaryHandler{diaries: diaries, coordinator: coordinator, upload: upload}
}

type commentRequest struct {
	Content  string `json:"content" binding:"required"`
	Nickname string `json:"nickname"`
}

// List 日记列表
// 查询参数: keyword, notebook_id, include_drafts, drafts_only, page, page_size
// @Router /api/v1/diaries [get]
func (h *DiaryHandler) List(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}

	q := diary.ListQuery{
		Keyword:       strings.TrimSpace(c.Query("keyword")),
		IncludeDrafts: queryBool(c, "include_drafts"),
		DraftsOnly:    queryBool(c, "drafts_only"),
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "page_size", 0),
	}
	if notebookID := c.Query("notebook_id"); notebookID != "" {
		q.NotebookID = &notebookID
	}

	entries, total, err := h.diaries.List(c.Request.Context(), userID, q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"items": entries, "total": total, "page": q.Page})
}

// Get 日记详情
// @Router /api/v1/diaries/{id} [get]
func (h *DiaryHandler) Get(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	detail, err := h.diaries.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, detail)
}

// Create 发布日记，multipart 表单，图片字段为 images
// @Router /api/v1/diaries [post]
func (h *DiaryHandler) Create(c *gin.Context) {
	in, ok := h.entryInput(c)
	if !ok {
		return
	}
	result, err := h.coordinator.CreateDiaryEntry(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, result)
}

// Update 编辑日记，新上传的图片追加到日记
// @Router /api/v1/diaries/{id} [put]
func (h *DiaryHandler) Update(c *gin.Context) {
	in, ok := h.entryInput(c)
	if !ok {
		return
	}
	result, err := h.coordinator.UpdateDiaryEntry(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// SaveDraft 保存草稿，表单带 draft_id 时覆盖已有草稿
// @Router /api/v1/drafts [post]
func (h *DiaryHandler) SaveDraft(c *gin.Context) {
	in, ok := h.entryInput(c)
	if !ok {
		return
	}
	draftID := strings.TrimSpace(c.PostForm("draft_id"))
	result, err := h.coordinator.SaveDraft(c.Request.Context(), draftID, in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if draftID == "" {
		response.Created(c, result)
		return
	}
	response.Success(c, result)
}

// Publish 发布草稿
// @Router /api/v1/diaries/{id}/publish [post]
func (h *DiaryHandler) Publish(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	if err := h.coordinator.PublishDraft(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// Delete 删除日记
// @Router /api/v1/diaries/{id} [delete]
func (h *DiaryHandler) Delete(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	if err := h.coordinator.DeleteDiaryEntry(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// Comments 评论列表
// @Router /api/v1/diaries/{id}/comments [get]
func (h *DiaryHandler) Comments(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	comments, err := h.diaries.Comments(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, comments)
}

// AddComment 发表评论
// @Router /api/v1/diaries/{id}/comments [post]
func (h *DiaryHandler) AddComment(c *gin.Context) {
	userID, ok := currentAccount(c)
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.diaries.AddComment(c.Request.Context(), userID, c.Param("id"), req.Content, req.Nickname)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, comment)
}

// entryInput 从 multipart 表单读取日记参数和图片
// 图片数量、大小、类型不合规时整个请求被拒绝，不会写入任何数据
func (h *DiaryHandler) entryInput(c *gin.Context) (lifecycle.EntryInput, bool) {
	var in lifecycle.EntryInput
	userID, ok := currentAccount(c)
	if !ok {
		return in, false
	}

	in.UserID = userID
	in.Content = c.PostForm("content")
	in.AuthorNickname = c.PostForm("author_nickname")
	in.AuthorAvatar = c.PostForm("author_avatar")
	if loc, ok := c.GetPostForm("location"); ok {
		in.Location = &loc
	}
	if albumID := c.PostForm("album_id"); albumID != "" {
		in.AlbumID = &albumID
	}
	if notebookID := c.PostForm("notebook_id"); notebookID != "" {
		in.NotebookID = &notebookID
	}
	if raw := c.PostForm("is_private"); raw != "" {
		private, err := strconv.ParseBool(raw)
		if err != nil {
			response.FromError(c, apperrors.FromCode(apperrors.ErrInvalidParams).WithDetails("is_private"))
			return in, false
		}
		in.IsPrivate = private
	}

	images, err := h.readImages(c)
	if err != nil {
		response.FromError(c, err)
		return in, false
	}
	in.Images = images
	return in, true
}

func (h *DiaryHandler) readImages(c *gin.Context) ([]lifecycle.Image, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// 非 multipart 请求（例如纯表单）视为没有图片
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.FromCode(apperrors.ErrInvalidParams).WithDetails(err.Error())
	}
	files := form.File["images"]
	if len(files) == 0 {
		return nil, nil
	}
	if h.upload.MaxImages > 0 && len(files) > h.upload.MaxImages {
		return nil, apperrors.FromCode(apperrors.ErrTooManyImages).
			WithDetails(strconv.Itoa(h.upload.MaxImages))
	}

	images := make([]lifecycle.Image, 0, len(files))
	for _, fh := range files {
		if h.upload.MaxImageSize > 0 && fh.Size > h.upload.MaxImageSize {
			return nil, apperrors.FromCode(apperrors.ErrImageTooLarge).WithDetails(fh.Filename)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidParams, "", err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidParams, "", err)
		}

		mt := mimetype.Detect(data)
		if !h.allowed(mt) {
			return nil, apperrors.FromCode(apperrors.ErrImageTypeNotAllowed).
				WithDetails(fh.Filename + ": " + mt.String())
		}
		images = append(images, lifecycle.Image{Name: fh.Filename, Data: data, ContentType: mt.String()})
	}
	return images, nil
}

func (h *DiaryHandler) allowed(mt *mimetype.MIME) bool {
	if len(h.upload.AllowedTypes) == 0 {
		return true
	}
	for _, t := range h.upload.AllowedTypes {
		if mt.Is(t) {
			return true
		}
	}
	return false
}
