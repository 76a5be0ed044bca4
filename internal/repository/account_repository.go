package repository

import (
	"context"
	"time"

	"github.com/weiwangfds/lzydiary/internal/database"
)

// AccountRepository 账户和会话
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *database.Account) error
	GetAccount(ctx context.Context, id string) (*database.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*database.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	CreateSession(ctx context.Context, session *database.Session) error
	GetSession(ctx context.Context, id string) (*database.Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
	DeleteSessionsByAccount(ctx context.Context, accountID string) error
}

// CreateAccount 创建账户
func (s *GormStore) CreateAccount(ctx context.Context, account *database.Account) error {
	return s.conn(ctx).Create(account).Error
}

// GetAccount 按ID查询账户
func (s *GormStore) GetAccount(ctx context.Context, id string) (*database.Account, error) {
	var account database.Account
	if err := s.conn(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

// GetAccountByEmail 按邮箱查询账户
func (s *GormStore) GetAccountByEmail(ctx context.Context, email string) (*database.Account, error) {
	var account database.Account
	if err := s.conn(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

// DeleteAccount 删除账户行，账户不存在时为空操作
func (s *GormStore) DeleteAccount(ctx context.Context, id string) error {
	return s.conn(ctx).Where("id = ?", id).Delete(&database.Account{}).Error
}

// CreateSession 创建会话
func (s *GormStore) CreateSession(ctx context.Context, session *database.Session) error {
	return s.conn(ctx).Create(session).Error
}

// GetSession 查询会话
func (s *GormStore) GetSession(ctx context.Context, id string) (*database.Session, error) {
	var session database.Session
	if err := s.conn(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

// RevokeSession 注销会话，已注销的会话保持原注销时间
func (s *GormStore) RevokeSession(ctx context.Context, id string, at time.Time) error {
	return s.conn(ctx).Model(&database.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		UpdateColumn("revoked_at", at).Error
}

// DeleteSessionsByAccount 删除账户的全部会话
func (s *GormStore) DeleteSessionsByAccount(ctx context.Context, accountID string) error {
	return s.conn(ctx).Where("account_id = ?", accountID).Delete(&database.Session{}).Error
}
