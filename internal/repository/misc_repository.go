package repository

import (
	"context"

	"github.com/weiwangfds/lzydiary/internal/database"
	"gorm.io/gorm"
)

// CommentRepository 日记评论
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *database.DiaryComment) error
	ListComments(ctx context.Context, diaryID string) ([]database.DiaryComment, error)
	DeleteCommentsByDiary(ctx context.Context, diaryID string) error
	// DeleteCommentsOnUserDiaries 删除 userID 名下所有日记上的评论
	DeleteCommentsOnUserDiaries(ctx context.Context, userID string) error
}

// NotebookRepository 笔记本
type NotebookRepository interface {
	CreateNotebook(ctx context.Context, notebook *database.Notebook) error
	GetNotebook(ctx context.Context, userID, id string) (*database.Notebook, error)
	ListNotebooks(ctx context.Context, userID string) ([]database.Notebook, error)
	CountNotebooks(ctx context.Context, userID string) (int64, error)
	DeleteNotebook(ctx context.Context, id string) error
	DeleteNotebooksByUser(ctx context.Context, userID string) error
}

// CountdownRepository 倒数日
type CountdownRepository interface {
	CreateCountdown(ctx context.Context, countdown *database.Countdown) error
	ListCountdowns(ctx context.Context, userID string) ([]database.Countdown, error)
	// DeleteCountdown 不存在或不属于 userID 时返回 ErrNotFound
	DeleteCountdown(ctx context.Context, userID, id string) error
	DeleteCountdownsByUser(ctx context.Context, userID string) error
}

// VisitorRepository 访客记录
type VisitorRepository interface {
	CreateVisitor(ctx context.Context, visitor *database.Visitor) error
}

// CreateComment 追加评论
func (s *GormStore) CreateComment(ctx context.Context, comment *database.DiaryComment) error {
	return s.conn(ctx).Create(comment).Error
}

// ListComments 按时间正序列出评论
func (s *GormStore) ListComments(ctx context.Context, diaryID string) ([]database.DiaryComment, error) {
	var comments []database.DiaryComment
	err := s.conn(ctx).Where("diary_id = ?", diaryID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

// DeleteCommentsByDiary 删除日记的全部评论
func (s *GormStore) DeleteCommentsByDiary(ctx context.Context, diaryID string) error {
	return s.conn(ctx).Where("diary_id = ?", diaryID).Delete(&database.DiaryComment{}).Error
}

// DeleteCommentsOnUserDiaries 删除账户日记上的评论
func (s *GormStore) DeleteCommentsOnUserDiaries(ctx context.Context, userID string) error {
	db := s.conn(ctx)
	diaryIDs := db.Session(&gorm.Session{NewDB: true}).
		Model(&database.DiaryEntry{}).Select("id").Where("user_id = ?", userID)
	return db.Where("diary_id IN (?)", diaryIDs).Delete(&database.DiaryComment{}).Error
}

// CreateNotebook 创建笔记本
func (s *GormStore) CreateNotebook(ctx context.Context, notebook *database.Notebook) error {
	return s.conn(ctx).Create(notebook).Error
}

// GetNotebook 查询笔记本
func (s *GormStore) GetNotebook(ctx context.Context, userID, id string) (*database.Notebook, error) {
	var notebook database.Notebook
	if err := s.conn(ctx).Where("id = ? AND user_id = ?", id, userID).First(&notebook).Error; err != nil {
		return nil, notFound(err)
	}
	return &notebook, nil
}

// ListNotebooks 按 sort_order 列出笔记本
func (s *GormStore) ListNotebooks(ctx context.Context, userID string) ([]database.Notebook, error) {
	var notebooks []database.Notebook
	err := s.conn(ctx).Where("user_id = ?", userID).
		Order("sort_order ASC").Order("created_at ASC").
		Find(&notebooks).Error
	return notebooks, err
}

// CountNotebooks 账户的笔记本数量
func (s *GormStore) CountNotebooks(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&database.Notebook{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// DeleteNotebook 删除笔记本行
func (s *GormStore) DeleteNotebook(ctx context.Context, id string) error {
	return s.conn(ctx).Where("id = ?", id).Delete(&database.Notebook{}).Error
}

// DeleteNotebooksByUser 删除账户的全部笔记本
func (s *GormStore) DeleteNotebooksByUser(ctx context.Context, userID string) error {
	return s.conn(ctx).Where("user_id = ?", userID).Delete(&database.Notebook{}).Error
}

// CreateCountdown 创建倒数日
func (s *GormStore) CreateCountdown(ctx context.Context, countdown *database.Countdown) error {
	return s.conn(ctx).Create(countdown).Error
}

// ListCountdowns 按目标日期正序列出
func (s *GormStore) ListCountdowns(ctx context.Context, userID string) ([]database.Countdown, error) {
	var countdowns []database.Countdown
	err := s.conn(ctx).Where("user_id = ?", userID).Order("target_date ASC").Find(&countdowns).Error
	return countdowns, err
}

// DeleteCountdown 删除倒数日
func (s *GormStore) DeleteCountdown(ctx context.Context, userID, id string) error {
	return affected(s.conn(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&database.Countdown{}))
}

// DeleteCountdownsByUser 删除账户的全部倒数日
func (s *GormStore) DeleteCountdownsByUser(ctx context.Context, userID string) error {
	return s.conn(ctx).Where("user_id = ?", userID).Delete(&database.Countdown{}).Error
}

// CreateVisitor 记录访客
func (s *GormStore) CreateVisitor(ctx context.Context, visitor *database.Visitor) error {
	return s.conn(ctx).Create(visitor).Error
}
