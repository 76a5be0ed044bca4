// Package repository 是行数据存储的访问层
//
// 对外只暴露按条件增删改查的能力，不做任何级联：父子记录的删除顺序
// 由 lifecycle 包按固定步骤调用这里的方法完成。所有按条件删除在目标行
// 已不存在时都是空操作，重复执行是安全的。
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在，或不属于当前账户
var ErrNotFound = errors.New("record not found")

// Store 全部表的访问接口
type Store interface {
	AccountRepository
	DiaryRepository
	CommentRepository
	AlbumRepository
	NotebookRepository
	CountdownRepository
	VisitorRepository

	// Transaction 在一个事务中执行 fn
	// 参数:
	//   ctx - 上下文
	//   fn - 事务内的操作，必须使用传入的 Store
	// 返回:
	//   error - fn 返回错误时回滚并原样返回
	Transaction(ctx context.Context, fn func(Store) error) error
}

// GormStore 基于 GORM 的实现
type GormStore struct {
	db *gorm.DB
}

// NewStore 创建存储实例
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB 底层连接
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// Transaction 在一个事务中执行 fn
func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// affected 把 RowsAffected 为 0 的更新/删除视为记录不存在
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
