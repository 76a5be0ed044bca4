// Package lifecycle 负责跨表的创建和删除顺序
//
// 数据库不做级联删除，相册、图片、日记、笔记本和账户之间的引用关系都在这里维护：
//   - 删除相册：先删图片，再解除日记引用，最后删相册
//   - 删除笔记本：解除日记引用后删除笔记本，日记本身保留
//   - 删除账户：事务内按图片 → 评论和日记 → 倒数日 → 笔记本 → 相册的顺序删除，
//     最后通过管理员能力删除身份
//   - 创建日记：必要时先确定默认相册，图片逐张上传，失败的图片单独汇报
package lifecycle

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/logger"
	"github.com/weiwangfds/lzydiary/internal/repository"
	"github.com/weiwangfds/lzydiary/internal/service/storage"
)

// IdentityAdmin 删除身份所需的管理员能力，与普通用户会话的权限不同
type IdentityAdmin interface {
	DeleteUser(ctx context.Context, accountID string) error
}

// Coordinator 实体生命周期协调器
type Coordinator struct {
	store repository.Store
	blobs storage.BlobStorage
	admin IdentityAdmin
	now   func() time.Time
}

// NewCoordinator 创建协调器
// blobs 为 nil 表示未配置图片存储，admin 为 nil 表示无法删除账户
func NewCoordinator(store repository.Store, blobs storage.BlobStorage, admin IdentityAdmin) *Coordinator {
	return &Coordinator{
		store: store,
		blobs: blobs,
		admin: admin,
		now:   time.Now,
	}
}

// DeleteAlbum 删除相册及其全部图片，引用该相册的日记 album_id 置空
func (c *Coordinator) DeleteAlbum(ctx context.Context, ownerID, albumID string) error {
	err := c.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.GetAlbum(ctx, ownerID, albumID); err != nil {
			return lookupError(err, apperrors.ErrAlbumNotFound)
		}
		if err := tx.DeleteAlbumImages(ctx, []string{albumID}); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseDelete, "删除相册图片失败", err)
		}
		if err := tx.DetachDiariesFromAlbum(ctx, albumID); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseUpdate, "解除日记与相册的关联失败", err)
		}
		if err := tx.DeleteAlbum(ctx, albumID); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseDelete, "删除相册失败", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Infof("[生命周期] 已删除相册 %s", albumID)
	return nil
}

// DeleteNotebook 删除笔记本，其中的日记变为未分类
func (c *Coordinator) DeleteNotebook(ctx context.Context, ownerID, notebookID string) error {
	err := c.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.GetNotebook(ctx, ownerID, notebookID); err != nil {
			return lookupError(err, apperrors.ErrNotebookNotFound)
		}
		if err := tx.DetachDiariesFromNotebook(ctx, notebookID); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseUpdate, "解除日记与笔记本的关联失败", err)
		}
		if err := tx.DeleteNotebook(ctx, notebookID); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseDelete, "删除笔记本失败", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Infof("[生命周期] 已删除笔记本 %s", notebookID)
	return nil
}

// DeleteAccount 删除账户及其拥有的全部数据
//
// 没有管理员能力时在删除任何数据之前失败。数据删除在一个事务中完成，
// 身份删除在事务提交之后执行；身份删除失败时可以整体重试，
// 已经删除的数据再次删除是空操作。
func (c *Coordinator) DeleteAccount(ctx context.Context, accountID string) error {
	if c.admin == nil {
		return apperrors.FromCode(apperrors.ErrAdminUnavailable)
	}

	err := c.store.Transaction(ctx, func(tx repository.Store) error {
		albumIDs, err := tx.ListAlbumIDs(ctx, accountID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseQuery, "查询相册失败", err)
		}

		steps := []struct {
			name string
			run  func() error
		}{
			{"相册图片", func() error { return tx.DeleteAlbumImages(ctx, albumIDs) }},
			{"日记评论", func() error { return tx.DeleteCommentsOnUserDiaries(ctx, accountID) }},
			{"日记", func() error { return tx.DeleteDiariesByUser(ctx, accountID) }},
			{"倒数日", func() error { return tx.DeleteCountdownsByUser(ctx, accountID) }},
			{"笔记本", func() error { return tx.DeleteNotebooksByUser(ctx, accountID) }},
			{"相册", func() error { return tx.DeleteAlbumsByUser(ctx, accountID) }},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return apperrors.Wrap(apperrors.ErrDatabaseDelete, "删除"+step.name+"失败", err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Errorf("[生命周期] 删除账户 %s 的数据失败: %v", accountID, err)
		return err
	}

	if err := c.admin.DeleteUser(ctx, accountID); err != nil {
		logger.Errorf("[生命周期] 账户 %s 的数据已删除，身份删除失败: %v", accountID, err)
		if _, ok := apperrors.GetAppError(err); ok {
			return err
		}
		return apperrors.Wrap(apperrors.ErrIdentityDeleteFailed, "", err)
	}

	logger.Infof("[生命周期] 已删除账户 %s", accountID)
	return nil
}

// lookupError 把 ErrNotFound 转成具体的业务错误码
func lookupError(err error, notFoundCode apperrors.ErrorCode) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.FromCode(notFoundCode)
	}
	return apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
}
