package repository

import (
	"context"

	"github.com/weiwangfds/lzydiary/internal/database"
)

// AlbumRepository 相册和相册图片
type AlbumRepository interface {
	CreateAlbum(ctx context.Context, album *database.Album) error
	GetAlbum(ctx context.Context, userID, id string) (*database.Album, error)
	// FirstAlbum 返回 sort_order 最小的相册，没有相册时返回 ErrNotFound
	FirstAlbum(ctx context.Context, userID string) (*database.Album, error)
	ListAlbums(ctx context.Context, userID string) ([]database.Album, error)
	ListAlbumIDs(ctx context.Context, userID string) ([]string, error)
	CountAlbums(ctx context.Context, userID string) (int64, error)
	DeleteAlbum(ctx context.Context, id string) error
	DeleteAlbumsByUser(ctx context.Context, userID string) error

	CreateAlbumImage(ctx context.Context, image *database.AlbumImage) error
	// ListAlbumImages 最新的图片在前，limit <= 0 表示不限制
	ListAlbumImages(ctx context.Context, albumID string, limit int) ([]database.AlbumImage, error)
	// ListDiaryImages 某篇日记上传的图片，按上传顺序
	ListDiaryImages(ctx context.Context, diaryID string) ([]database.AlbumImage, error)
	// DeleteAlbumImages 删除 album_id 在 albumIDs 中的图片，集合为空时为空操作
	DeleteAlbumImages(ctx context.Context, albumIDs []string) error
	DetachImagesFromDiary(ctx context.Context, diaryID string) error
}

// CreateAlbum 创建相册
func (s *GormStore) CreateAlbum(ctx context.Context, album *database.Album) error {
	return s.conn(ctx).Create(album).Error
}

// GetAlbum 查询相册
func (s *GormStore) GetAlbum(ctx context.Context, userID, id string) (*database.Album, error) {
	var album database.Album
	if err := s.conn(ctx).Where("id = ? AND user_id = ?", id, userID).First(&album).Error; err != nil {
		return nil, notFound(err)
	}
	return &album, nil
}

// FirstAlbum 第一个相册
func (s *GormStore) FirstAlbum(ctx context.Context, userID string) (*database.Album, error) {
	var album database.Album
	err := s.conn(ctx).Where("user_id = ?", userID).
		Order("sort_order ASC").Order("created_at ASC").
		First(&album).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &album, nil
}

// ListAlbums 按 sort_order 列出相册
func (s *GormStore) ListAlbums(ctx context.Context, userID string) ([]database.Album, error) {
	var albums []database.Album
	err := s.conn(ctx).Where("user_id = ?", userID).
		Order("sort_order ASC").Order("created_at ASC").
		Find(&albums).Error
	return albums, err
}

// ListAlbumIDs 账户的全部相册ID
func (s *GormStore) ListAlbumIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.conn(ctx).Model(&database.Album{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

// CountAlbums 账户的相册数量
func (s *GormStore) CountAlbums(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&database.Album{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// DeleteAlbum 删除相册行，调用前必须先删除其图片
func (s *GormStore) DeleteAlbum(ctx context.Context, id string) error {
	return s.conn(ctx).Where("id = ?", id).Delete(&database.Album{}).Error
}

// DeleteAlbumsByUser 删除账户的全部相册
func (s *GormStore) DeleteAlbumsByUser(ctx context.Context, userID string) error {
	return s.conn(ctx).Where("user_id = ?", userID).Delete(&database.Album{}).Error
}

// CreateAlbumImage 记录一张已上传的图片
func (s *GormStore) CreateAlbumImage(ctx context.Context, image *database.AlbumImage) error {
	return s.conn(ctx).Create(image).Error
}

// ListAlbumImages 相册图片
func (s *GormStore) ListAlbumImages(ctx context.Context, albumID string, limit int) ([]database.AlbumImage, error) {
	query := s.conn(ctx).Where("album_id = ?", albumID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var images []database.AlbumImage
	err := query.Find(&images).Error
	return images, err
}

// ListDiaryImages 日记图片
func (s *GormStore) ListDiaryImages(ctx context.Context, diaryID string) ([]database.AlbumImage, error) {
	var images []database.AlbumImage
	err := s.conn(ctx).Where("diary_id = ?", diaryID).Order("created_at ASC").Find(&images).Error
	return images, err
}

// DeleteAlbumImages 按相册删除图片
func (s *GormStore) DeleteAlbumImages(ctx context.Context, albumIDs []string) error {
	if len(albumIDs) == 0 {
		return nil
	}
	return s.conn(ctx).Where("album_id IN ?", albumIDs).Delete(&database.AlbumImage{}).Error
}

// DetachImagesFromDiary 日记删除后图片仍留在相册中
func (s *GormStore) DetachImagesFromDiary(ctx context.Context, diaryID string) error {
	return s.conn(ctx).Model(&database.AlbumImage{}).
		Where("diary_id = ?", diaryID).
		UpdateColumn("diary_id", nil).Error
}
