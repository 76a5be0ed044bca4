// Package collection 管理相册和笔记本的列表与创建
// 删除相册和笔记本需要处理引用关系，由 lifecycle 包负责
package collection

import (
	"context"
	"errors"
	"strings"

	"github.com/weiwangfds/lzydiary/internal/database"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/logger"
	"github.com/weiwangfds/lzydiary/internal/repository"
	"golang.org/x/sync/errgroup"
)

// LatestImagesPerAlbum 相册列表中每个相册附带的最新图片数
const LatestImagesPerAlbum = 12

// 同时查询相册图片的最大并发数
const imageQueryConcurrency = 4

// Service 相册和笔记本服务
type Service struct {
	store repository.Store
}

// NewService 创建服务
func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

// ListAlbums 按 sort_order 列出相册，每个相册附带最新的12张图片
func (s *Service) ListAlbums(ctx context.Context, userID string) ([]database.Album, error) {
	albums, err := s.store.ListAlbums(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageQueryConcurrency)
	for i := range albums {
		album := &albums[i]
		g.Go(func() error {
			images, err := s.store.ListAlbumImages(gctx, album.ID, LatestImagesPerAlbum)
			if err != nil {
				return err
			}
			album.Images = images
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}
	return albums, nil
}

// AlbumImages 相册的全部图片，最新的在前
func (s *Service) AlbumImages(ctx context.Context, userID, albumID string) ([]database.AlbumImage, error) {
	if _, err := s.store.GetAlbum(ctx, userID, albumID); err != nil {
		return nil, notFoundAs(err, apperrors.ErrAlbumNotFound)
	}
	images, err := s.store.ListAlbumImages(ctx, albumID, 0)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}
	return images, nil
}

// CreateAlbum 创建相册，排在现有相册之后
func (s *Service) CreateAlbum(ctx context.Context, userID, name string) (*database.Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.FromCode(apperrors.ErrInvalidParams).WithDetails("name")
	}

	var album *database.Album
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		n, err := tx.CountAlbums(ctx, userID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
		}
		album = &database.Album{UserID: userID, Name: name, SortOrder: int(n)}
		if err := tx.CreateAlbum(ctx, album); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseInsert, "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("[相册] 账户 %s 创建相册 %s", userID, album.Name)
	return album, nil
}

// ListNotebooks 按 sort_order 列出笔记本
func (s *Service) ListNotebooks(ctx context.Context, userID string) ([]database.Notebook, error) {
	notebooks, err := s.store.ListNotebooks(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}
	return notebooks, nil
}

// CreateNotebook 创建笔记本，排在现有笔记本之后
func (s *Service) CreateNotebook(ctx context.Context, userID, name string) (*database.Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.FromCode(apperrors.ErrInvalidParams).WithDetails("name")
	}

	var notebook *database.Notebook
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		n, err := tx.CountNotebooks(ctx, userID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
		}
		notebook = &database.Notebook{UserID: userID, Name: name, SortOrder: int(n)}
		if err := tx.CreateNotebook(ctx, notebook); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabaseInsert, "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notebook, nil
}

func notFoundAs(err error, code apperrors.ErrorCode) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.FromCode(code)
	}
	return apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
}
