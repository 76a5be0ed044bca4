// Package database 定义了日记系统的数据库模型和初始化逻辑
// 模型拆分在以下文件中：
// - account_models.go: 账户、会话和访客记录（Account, Session, Visitor）
// - diary_models.go: 日记、评论、相册、笔记本和纪念日
//
// 数据库不做外键级联，父子记录的删除顺序由 lifecycle 包负责
package database

import (
	"github.com/google/uuid"
)

// 表名，与前端约定的名称保持一致
const (
	TableAccounts     = "accounts"
	TableSessions     = "sessions"
	TableDiary        = "diary"
	TableDiaryComment = "diary_comment"
	TableAlbum        = "album"
	TableAlbumImage   = "album_image"
	TableNotebook     = "notebook"
	TableCountdown    = "countdown"
	TableVisitor      = "visitor"
)

// 纪念日类型
const (
	CountdownTypeCountdown   = "countdown"
	CountdownTypeAnniversary = "anniversary"
)

// DefaultAlbumName 上传图片但没有任何相册时自动创建的相册名
const DefaultAlbumName = "笔记"

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// AllModels 返回需要迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&Account{},
		&Session{},
		&DiaryEntry{},
		&DiaryComment{},
		&Album{},
		&AlbumImage{},
		&Notebook{},
		&Countdown{},
		&Visitor{},
	}
}
