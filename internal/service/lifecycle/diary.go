package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/weiwangfds/lzydiary/internal/database"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/logger"
	"github.com/weiwangfds/lzydiary/internal/repository"
	"github.com/weiwangfds/lzydiary/internal/service/storage"
)

// DefaultAuthorNickname 没有设置昵称时写入日记的作者名
const DefaultAuthorNickname = "LZY"

// Image 待上传的图片
type Image struct {
	Name        string // 原始文件名，用于推断扩展名
	Data        []byte
	ContentType string // 为空时按内容识别
}

// EntryInput 创建或编辑日记的参数
type EntryInput struct {
	UserID         string
	Content        string
	Location       *string
	IsPrivate      bool
	AlbumID        *string
	NotebookID     *string
	AuthorNickname string // 只在创建时写入
	AuthorAvatar   string // 只在创建时写入
	Images         []Image
}

// UploadError 单张图片的上传失败信息
type UploadError struct {
	Index   int    `json:"index"` // 从1开始
	Name    string `json:"name"`
	Message string `json:"message"`
}

// EntryResult 保存日记的结果
// 部分图片失败时日记和成功的图片照常保存，失败的图片记录在 UploadErrors 中
type EntryResult struct {
	Entry        *database.DiaryEntry  `json:"entry"`
	Images       []database.AlbumImage `json:"images"`
	UploadErrors []UploadError         `json:"upload_errors,omitempty"`
}

// CreateDiaryEntry 发布一篇日记
func (c *Coordinator) CreateDiaryEntry(ctx context.Context, in EntryInput) (*EntryResult, error) {
	return c.createEntry(ctx, in, false)
}

// SaveDraft 保存草稿，draftID 为空时新建
func (c *Coordinator) SaveDraft(ctx context.Context, draftID string, in EntryInput) (*EntryResult, error) {
	if draftID == "" {
		return c.createEntry(ctx, in, true)
	}
	return c.updateEntry(ctx, draftID, in, true)
}

// UpdateDiaryEntry 编辑日记，作者快照保持创建时的值
func (c *Coordinator) UpdateDiaryEntry(ctx context.Context, id string, in EntryInput) (*EntryResult, error) {
	return c.updateEntry(ctx, id, in, false)
}

// PublishDraft 把草稿改为已发布，只修改 is_draft 一列
func (c *Coordinator) PublishDraft(ctx context.Context, ownerID, id string) error {
	entry, err := c.store.GetDiary(ctx, ownerID, id)
	if err != nil {
		return lookupError(err, apperrors.ErrDiaryNotFound)
	}
	if !entry.IsDraft {
		return apperrors.FromCode(apperrors.ErrDraftAlreadyPublished)
	}
	if err := c.store.SetDiaryDraft(ctx, id, false); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseUpdate, "", err)
	}

	logger.Infof("[生命周期] 草稿 %s 已发布", id)
	return nil
}

// DeleteDiaryEntry 删除日记和它的评论，日记上传的图片留在相册里
func (c *Coordinator) DeleteDiaryEntry(ctx context.Context, ownerID, id string) error {
	return c.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.GetDiary(ctx, ownerID, id); err != nil {
			return lookupError(err, apperrors.ErrDiaryNotFound)
		}
		if err := tx.DeleteCommentsByDiary(ctx, id); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseDelete, "删除评论失败", err)
		}
		if err := tx.DetachImagesFromDiary(ctx, id); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseUpdate, "解除图片与日记的关联失败", err)
		}
		if err := tx.DeleteDiary(ctx, id); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseDelete, "删除日记失败", err)
		}
		return nil
	})
}

func (c *Coordinator) createEntry(ctx context.Context, in EntryInput, draft bool) (*EntryResult, error) {
	content, err := c.validate(in)
	if err != nil {
		return nil, err
	}

	nickname := strings.TrimSpace(in.AuthorNickname)
	if nickname == "" {
		nickname = DefaultAuthorNickname
	}

	var entry *database.DiaryEntry
	err = c.store.Transaction(ctx, func(tx repository.Store) error {
		albumID, err := c.resolveAlbum(ctx, tx, in)
		if err != nil {
			return err
		}
		if err := checkNotebook(ctx, tx, in); err != nil {
			return err
		}

		entry = &database.DiaryEntry{
			UserID:         in.UserID,
			Content:        content,
			Location:       normalizeLocation(in.Location),
			IsPrivate:      in.IsPrivate,
			IsDraft:        draft,
			AlbumID:        albumID,
			NotebookID:     emptyToNil(in.NotebookID),
			AuthorNickname: nickname,
			AuthorAvatar:   in.AuthorAvatar,
		}
		if err := tx.CreateDiary(ctx, entry); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseInsert, "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := c.attachImages(ctx, entry, in.Images)
	logger.Infof("[生命周期] 已创建日记 %s (草稿: %v, 图片: %d 成功 / %d 失败)",
		entry.ID, draft, len(result.Images), len(result.UploadErrors))
	return result, nil
}

func (c *Coordinator) updateEntry(ctx context.Context, id string, in EntryInput, draftOnly bool) (*EntryResult, error) {
	content, err := c.validate(in)
	if err != nil {
		return nil, err
	}

	var entry *database.DiaryEntry
	err = c.store.Transaction(ctx, func(tx repository.Store) error {
		current, err := tx.GetDiary(ctx, in.UserID, id)
		if err != nil {
			return lookupError(err, apperrors.ErrDiaryNotFound)
		}
		if draftOnly && !current.IsDraft {
			return apperrors.FromCode(apperrors.ErrDraftAlreadyPublished)
		}

		albumID, err := c.resolveAlbum(ctx, tx, in)
		if err != nil {
			return err
		}
		if err := checkNotebook(ctx, tx, in); err != nil {
			return err
		}

		fields := map[string]interface{}{
			"content":     content,
			"location":    normalizeLocation(in.Location),
			"is_private":  in.IsPrivate,
			"album_id":    albumID,
			"notebook_id": emptyToNil(in.NotebookID),
		}
		if err := tx.UpdateDiary(ctx, id, fields); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseUpdate, "", err)
		}

		entry, err = tx.GetDiary(ctx, in.UserID, id)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := c.attachImages(ctx, entry, in.Images)
	logger.Infof("[生命周期] 已更新日记 %s (新增图片: %d 成功 / %d 失败)",
		entry.ID, len(result.Images), len(result.UploadErrors))
	return result, nil
}

// validate 检查正文和图片存储，在写入任何数据之前调用
func (c *Coordinator) validate(in EntryInput) (string, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return "", apperrors.FromCode(apperrors.ErrContentEmpty)
	}
	if len(in.Images) > 0 && c.blobs == nil {
		return "", apperrors.FromCode(apperrors.ErrStorageNotConfigured)
	}
	return content, nil
}

// resolveAlbum 确定图片归属的相册
// 指定了相册时校验归属；有图片但没选相册时取第一个相册，一个都没有就创建默认相册
func (c *Coordinator) resolveAlbum(ctx context.Context, tx repository.Store, in EntryInput) (*string, error) {
	if id := emptyToNil(in.AlbumID); id != nil {
		if _, err := tx.GetAlbum(ctx, in.UserID, *id); err != nil {
			return nil, lookupError(err, apperrors.ErrAlbumNotFound)
		}
		return id, nil
	}
	if len(in.Images) == 0 {
		return nil, nil
	}

	album, err := tx.FirstAlbum(ctx, in.UserID)
	if err == nil {
		return &album.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}

	album = &database.Album{UserID: in.UserID, Name: database.DefaultAlbumName, SortOrder: 0}
	if err := tx.CreateAlbum(ctx, album); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseInsert, "创建默认相册失败", err)
	}
	logger.Infof("[生命周期] 账户 %s 没有相册，已创建默认相册 %s", in.UserID, album.ID)
	return &album.ID, nil
}

func checkNotebook(ctx context.Context, tx repository.Store, in EntryInput) error {
	id := emptyToNil(in.NotebookID)
	if id == nil {
		return nil
	}
	if _, err := tx.GetNotebook(ctx, in.UserID, *id); err != nil {
		return lookupError(err, apperrors.ErrNotebookNotFound)
	}
	return nil
}

// attachImages 逐张上传图片，上传成功后才写入 album_image
// 单张失败不影响后续图片，已成功的图片不会回滚
func (c *Coordinator) attachImages(ctx context.Context, entry *database.DiaryEntry, images []Image) *EntryResult {
	result := &EntryResult{Entry: entry, Images: []database.AlbumImage{}}
	if len(images) == 0 || entry.AlbumID == nil {
		return result
	}

	for i, img := range images {
		fail := func(err error) {
			logger.Warnf("[生命周期] 日记 %s 第%d张图片 %s 保存失败: %v", entry.ID, i+1, img.Name, err)
			result.UploadErrors = append(result.UploadErrors, UploadError{
				Index:   i + 1,
				Name:    img.Name,
				Message: fmt.Sprintf("第%d张图片上传失败: %v", i+1, err),
			})
		}

		if err := ctx.Err(); err != nil {
			fail(err)
			continue
		}

		key := fmt.Sprintf("%s/%d-%d.%s", entry.ID, c.now().UnixMilli(), i, storage.ExtensionOf(img.Data))
		contentType := img.ContentType
		if contentType == "" {
			contentType = storage.DetectContentType(img.Data)
		}
		if err := c.blobs.Upload(ctx, key, img.Data, contentType, true); err != nil {
			fail(err)
			continue
		}

		row := database.AlbumImage{
			AlbumID:    *entry.AlbumID,
			DiaryID:    &entry.ID,
			ImageURL:   c.blobs.PublicURL(key),
			StorageKey: key,
		}
		if err := c.store.CreateAlbumImage(ctx, &row); err != nil {
			fail(err)
			continue
		}
		result.Images = append(result.Images, row)
	}
	return result
}

func normalizeLocation(loc *string) *string {
	if loc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*loc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func emptyToNil(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}
