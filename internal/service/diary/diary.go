// Package diary 提供日记的查询和评论
// 创建、编辑、删除等涉及多表的写操作在 lifecycle 包中
package diary

import (
	"context"
	"errors"
	"strings"

	"github.com/weiwangfds/lzydiary/internal/database"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/logger"
	"github.com/weiwangfds/lzydiary/internal/repository"
)

// DefaultCommentNickname 未设置昵称时评论显示的名字
const DefaultCommentNickname = "我"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// LocationResolver 对坐标串形式的位置做延迟解析
type LocationResolver interface {
	ResolveStored(ctx context.Context, stored string) (string, bool)
}

// ListQuery 列表查询参数
type ListQuery struct {
	Keyword       string
	NotebookID    *string
	IncludeDrafts bool
	DraftsOnly    bool
	Page          int
	PageSize      int
}

// Detail 日记详情
type Detail struct {
	Entry    *database.DiaryEntry    `json:"entry"`
	Images   []database.AlbumImage   `json:"images"`
	Comments []database.DiaryComment `json:"comments"`
	// ResolvedLocation 位置是坐标串且解析成功时的地址，数据库中的原值不变
	ResolvedLocation string `json:"resolved_location,omitempty"`
}

// Service 日记查询服务
type Service struct {
	store    repository.Store
	resolver LocationResolver
}

// NewService 创建日记查询服务，resolver 可以为 nil
func NewService(store repository.Store, resolver LocationResolver) *Service {
	return &Service{store: store, resolver: resolver}
}

// List 列出日记，最新的在前
func (s *Service) List(ctx context.Context, userID string, q ListQuery) ([]database.DiaryEntry, int64, error) {
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	entries, total, err := s.store.ListDiaries(ctx, repository.DiaryFilter{
		UserID:        userID,
		Keyword:       q.Keyword,
		NotebookID:    q.NotebookID,
		IncludeDrafts: q.IncludeDrafts,
		DraftsOnly:    q.DraftsOnly,
		Limit:         size,
		Offset:        (page - 1) * size,
	})
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}
	return entries, total, nil
}

// Get 日记详情：图片和评论都按时间正序
func (s *Service) Get(ctx context.Context, userID, id string) (*Detail, error) {
	entry, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	images, err := s.store.ListDiaryImages(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}
	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}

	detail := &Detail{Entry: entry, Images: images, Comments: comments}
	if s.resolver != nil && entry.Location != nil {
		if addr, ok := s.resolver.ResolveStored(ctx, *entry.Location); ok {
			detail.ResolvedLocation = addr
		}
	}
	return detail, nil
}

// AddComment 追加评论
func (s *Service) AddComment(ctx context.Context, userID, diaryID, content, nickname string) (*database.DiaryComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.FromCode(apperrors.ErrContentEmpty)
	}
	if _, err := s.owned(ctx, userID, diaryID); err != nil {
		return nil, err
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = DefaultCommentNickname
	}

	comment := &database.DiaryComment{
		DiaryID:        diaryID,
		UserID:         userID,
		Content:        content,
		AuthorNickname: nickname,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseInsert, "", err)
	}

	logger.Debugf("[日记] 日记 %s 新增评论 %s", diaryID, comment.ID)
	return comment, nil
}

// Comments 日记的评论
func (s *Service) Comments(ctx context.Context, userID, diaryID string) ([]database.DiaryComment, error) {
	if _, err := s.owned(ctx, userID, diaryID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, diaryID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}
	return comments, nil
}

func (s *Service) owned(ctx context.Context, userID, id string) (*database.DiaryEntry, error) {
	entry, err := s.store.GetDiary(ctx, userID, id)
	if err == nil {
		return entry, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.FromCode(apperrors.ErrDiaryNotFound)
	}
	return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
}
