package database

import (
	"github.com/weiwangfds/lzydiary/internal/logger"
	"gorm.io/gorm"
)

// 需要确认存在的复合索引
// 这些索引对应列表查询的排序方式：日记按时间倒序、相册按 sort_order、图片按时间、纪念日按目标日期
var compositeIndexes = []struct {
	model interface{}
	name  string
}{
	{&DiaryEntry{}, "idx_diary_user_created"},
	{&Album{}, "idx_album_user_sort"},
	{&AlbumImage{}, "idx_album_image_album_created"},
	{&Countdown{}, "idx_countdown_user_target"},
}

// Migrate 执行数据库迁移
// 参数: db *gorm.DB - GORM数据库连接实例
// 返回值: error - 建表或建索引失败
func Migrate(db *gorm.DB) error {
	logger.Info("开始执行数据库迁移...")

	if err := db.AutoMigrate(AllModels()...); err != nil {
		return err
	}

	m := db.Migrator()
	for _, idx := range compositeIndexes {
		if m.HasIndex(idx.model, idx.name) {
			continue
		}
		if err := m.CreateIndex(idx.model, idx.name); err != nil {
			logger.Errorf("创建索引失败: %s, 错误: %v", idx.name, err)
			return err
		}
		logger.Infof("已创建索引: %s", idx.name)
	}

	logger.Info("数据库迁移完成")
	return nil
}
