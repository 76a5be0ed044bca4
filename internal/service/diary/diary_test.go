package diary

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/lzydiary/config"
	"github.com/weiwangfds/lzydiary/internal/database"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/repository"
	"gorm.io/gorm"
)

type stubResolver map[string]string

func (r stubResolver) ResolveStored(_ context.Context, stored string) (string, bool) {
	if addr, ok := r[stored]; ok {
		return addr, true
	}
	return stored, false
}

func setup(t *testing.T, resolver LocationResolver) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewService(repository.NewStore(db), resolver), db
}

func TestGetDetail(t *testing.T) {
	ctx := context.Background()
	coords := "39.9042, 116.4074"
	s, db := setup(t, stubResolver{coords: "北京市朝阳区"})

	entry := database.DiaryEntry{UserID: "u1", Content: "晴", Location: &coords}
	require.NoError(t, db.Create(&entry).Error)
	require.NoError(t, db.Create(&database.AlbumImage{AlbumID: "a1", DiaryID: &entry.ID, ImageURL: "/1.png"}).Error)

	_, err := s.AddComment(ctx, "u1", entry.ID, "  不错  ", "")
	require.NoError(t, err)
	_, err = s.AddComment(ctx, "u1", entry.ID, "再来一条", "小林")
	require.NoError(t, err)

	detail, err := s.Get(ctx, "u1", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "北京市朝阳区", detail.ResolvedLocation)
	assert.Equal(t, coords, *detail.Entry.Location)
	require.Len(t, detail.Images, 1)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "不错", detail.Comments[0].Content)
	assert.Equal(t, DefaultCommentNickname, detail.Comments[0].AuthorNickname)
	assert.Equal(t, "小林", detail.Comments[1].AuthorNickname)

	_, err = s.Get(ctx, "u2", entry.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrDiaryNotFound))
}

func TestAddCommentValidation(t *testing.T) {
	ctx := context.Background()
	s, db := setup(t, nil)

	entry := database.DiaryEntry{UserID: "u1", Content: "晴"}
	require.NoError(t, db.Create(&entry).Error)

	_, err := s.AddComment(ctx, "u1", entry.ID, "   ", "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrContentEmpty))

	_, err = s.AddComment(ctx, "u1", "missing", "hi", "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrDiaryNotFound))

	comments, err := s.Comments(ctx, "u1", entry.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestListPaging(t *testing.T) {
	ctx := context.Background()
	s, db := setup(t, nil)

	for i := 0; i < 25; i++ {
		require.NoError(t, db.Create(&database.DiaryEntry{UserID: "u1", Content: "日记"}).Error)
	}

	list, total, err := s.List(ctx, "u1", ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, list, defaultPageSize)

	list, _, err = s.List(ctx, "u1", ListQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, list, 5)

	list, _, err = s.List(ctx, "u1", ListQuery{PageSize: 1000})
	require.NoError(t, err)
	assert.Len(t, list, 25)
}
