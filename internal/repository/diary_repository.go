package repository

import (
	"context"
	"strings"

	"github.com/weiwangfds/lzydiary/internal/database"
	"gorm.io/gorm"
)

// DiaryFilter 日记列表查询条件
type DiaryFilter struct {
	UserID        string
	Keyword       string  // 正文模糊匹配
	NotebookID    *string // 只查某个笔记本
	IncludeDrafts bool    // 默认只返回已发布的日记
	DraftsOnly    bool
	Limit         int
	Offset        int
}

// DiaryRepository 日记
type DiaryRepository interface {
	CreateDiary(ctx context.Context, entry *database.DiaryEntry) error
	// GetDiary 查询属于 userID 的日记，不存在或不属于该账户时返回 ErrNotFound
	GetDiary(ctx context.Context, userID, id string) (*database.DiaryEntry, error)
	ListDiaries(ctx context.Context, filter DiaryFilter) ([]database.DiaryEntry, int64, error)
	// UpdateDiary 只更新 fields 中的列
	UpdateDiary(ctx context.Context, id string, fields map[string]interface{}) error
	// SetDiaryDraft 只改 is_draft 一列，updated_at 也保持不变
	SetDiaryDraft(ctx context.Context, id string, draft bool) error
	DeleteDiary(ctx context.Context, id string) error
	DeleteDiariesByUser(ctx context.Context, userID string) error
	DetachDiariesFromAlbum(ctx context.Context, albumID string) error
	DetachDiariesFromNotebook(ctx context.Context, notebookID string) error
}

// CreateDiary 创建日记
func (s *GormStore) CreateDiary(ctx context.Context, entry *database.DiaryEntry) error {
	return s.conn(ctx).Create(entry).Error
}

// GetDiary 查询日记
func (s *GormStore) GetDiary(ctx context.Context, userID, id string) (*database.DiaryEntry, error) {
	var entry database.DiaryEntry
	err := s.conn(ctx).Where("id = ? AND user_id = ?", id, userID).First(&entry).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

// ListDiaries 按创建时间倒序列出日记
func (s *GormStore) ListDiaries(ctx context.Context, filter DiaryFilter) ([]database.DiaryEntry, int64, error) {
	query := s.conn(ctx).Model(&database.DiaryEntry{}).Where("user_id = ?", filter.UserID)

	switch {
	case filter.DraftsOnly:
		query = query.Where("is_draft = ?", true)
	case !filter.IncludeDrafts:
		query = query.Where("is_draft = ?", false)
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		query = query.Where("content LIKE ?", "%"+kw+"%")
	}
	if filter.NotebookID != nil {
		query = query.Where("notebook_id = ?", *filter.NotebookID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var entries []database.DiaryEntry
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// UpdateDiary 更新日记
func (s *GormStore) UpdateDiary(ctx context.Context, id string, fields map[string]interface{}) error {
	return affected(s.conn(ctx).Model(&database.DiaryEntry{}).Where("id = ?", id).Updates(fields))
}

// SetDiaryDraft 修改草稿状态
func (s *GormStore) SetDiaryDraft(ctx context.Context, id string, draft bool) error {
	return affected(s.conn(ctx).Model(&database.DiaryEntry{}).Where("id = ?", id).UpdateColumn("is_draft", draft))
}

// DeleteDiary 删除日记行
func (s *GormStore) DeleteDiary(ctx context.Context, id string) error {
	return s.conn(ctx).Where("id = ?", id).Delete(&database.DiaryEntry{}).Error
}

// DeleteDiariesByUser 删除账户的全部日记
func (s *GormStore) DeleteDiariesByUser(ctx context.Context, userID string) error {
	return s.conn(ctx).Where("user_id = ?", userID).Delete(&database.DiaryEntry{}).Error
}

// DetachDiariesFromAlbum 清空引用该相册的 album_id
func (s *GormStore) DetachDiariesFromAlbum(ctx context.Context, albumID string) error {
	return s.conn(ctx).Model(&database.DiaryEntry{}).
		Where("album_id = ?", albumID).
		UpdateColumn("album_id", nil).Error
}

// DetachDiariesFromNotebook 清空引用该笔记本的 notebook_id
func (s *GormStore) DetachDiariesFromNotebook(ctx context.Context, notebookID string) error {
	return s.conn(ctx).Model(&database.DiaryEntry{}).
		Where("notebook_id = ?", notebookID).
		UpdateColumn("notebook_id", nil).Error
}
