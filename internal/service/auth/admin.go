package auth

import (
	"context"

	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/logger"
	"github.com/weiwangfds/lzydiary/internal/repository"
)

// Admin 管理员身份操作
// 需要单独配置的管理员密钥，普通用户会话不具备这一权限
type Admin struct {
	store repository.Store
	key   string
}

// NewAdmin 创建管理员能力，key 为空时返回 nil
func NewAdmin(store repository.Store, key string) *Admin {
	if key == "" {
		return nil
	}
	return &Admin{store: store, key: key}
}

// DeleteUser 删除身份：先吊销全部会话再删除账户行，账户已不存在时视为成功
func (a *Admin) DeleteUser(ctx context.Context, accountID string) error {
	if a == nil || a.key == "" {
		return apperrors.FromCode(apperrors.ErrAdminUnavailable)
	}

	err := a.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.DeleteSessionsByAccount(ctx, accountID); err != nil {
			return err
		}
		return tx.DeleteAccount(ctx, accountID)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrIdentityDeleteFailed, "", err)
	}

	logger.Infof("[认证] 身份 %s 已删除", accountID)
	return nil
}
