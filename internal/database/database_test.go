package database

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/lzydiary/config"
)

func TestInitCreatesTables(t *testing.T) {
	db, err := Init(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)

	m := db.Migrator()
	for _, table := range []string{TableAccounts, TableSessions, TableDiary, TableDiaryComment,
		TableAlbum, TableAlbumImage, TableNotebook, TableCountdown, TableVisitor} {
		assert.True(t, m.HasTable(table), "缺少表 %s", table)
	}
	for _, idx := range compositeIndexes {
		assert.True(t, m.HasIndex(idx.model, idx.name), "缺少索引 %s", idx.name)
	}

	// 重复迁移是幂等的
	require.NoError(t, Migrate(db))
}

func TestInitCreatesSQLiteDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "diary.db")
	db, err := Init(config.DatabaseConfig{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	assert.FileExists(t, dsn)
}

func TestBeforeCreateAssignsID(t *testing.T) {
	db, err := Init(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)

	album := Album{UserID: "u1", Name: DefaultAlbumName}
	require.NoError(t, db.Create(&album).Error)
	_, err = uuid.Parse(album.ID)
	assert.NoError(t, err)

	preset := Notebook{ID: "fixed-id", UserID: "u1", Name: "旅行"}
	require.NoError(t, db.Create(&preset).Error)
	assert.Equal(t, "fixed-id", preset.ID)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}
