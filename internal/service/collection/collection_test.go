package collection

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/lzydiary/config"
	"github.com/weiwangfds/lzydiary/internal/database"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/repository"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Service, *gorm.DB) {
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
	return NewService(repository.NewStore(db)), db
}

func TestAlbums(t *testing.T) {
	ctx := context.Background()
	s, db := setup(t)

	travel, err := s.CreateAlbum(ctx, "u1", " 旅行 ")
	require.NoError(t, err)
	food, err := s.CreateAlbum(ctx, "u1", "探店")
	require.NoError(t, err)
	assert.Equal(t, "旅行", travel.Name)
	assert.Equal(t, 0, travel.SortOrder)
	assert.Equal(t, 1, food.SortOrder)

	_, err = s.CreateAlbum(ctx, "u1", "  ")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidParams))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		img := database.AlbumImage{AlbumID: travel.ID, ImageURL: fmt.Sprintf("/%d.png", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, db.Create(&img).Error)
	}

	albums, err := s.ListAlbums(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, albums, 2)
	assert.Equal(t, "旅行", albums[0].Name)
	require.Len(t, albums[0].Images, LatestImagesPerAlbum)
	assert.Equal(t, "/14.png", albums[0].Images[0].ImageURL)
	assert.Empty(t, albums[1].Images)

	all, err := s.AlbumImages(ctx, "u1", travel.ID)
	require.NoError(t, err)
	assert.Len(t, all, 15)

	_, err = s.AlbumImages(ctx, "u2", travel.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrAlbumNotFound))
}

func TestNotebooks(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)

	first, err := s.CreateNotebook(ctx, "u1", "读书")
	require.NoError(t, err)
	second, err := s.CreateNotebook(ctx, "u1", "旅行")
	require.NoError(t, err)
	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)

	notebooks, err := s.ListNotebooks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, notebooks, 2)
	assert.Equal(t, "读书", notebooks[0].Name)

	others, err := s.ListNotebooks(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, others)
}
