// Package countdown 倒数日和纪念日
package countdown

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/weiwangfds/lzydiary/internal/database"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/repository"
)

// DateLayout 目标日期格式
const DateLayout = "2006-01-02"

// Item 带剩余/已过天数的倒数日
type Item struct {
	database.Countdown
	Days int `json:"days"`
}

// Service 倒数日服务
type Service struct {
	store repository.Store
	now   func() time.Time
}

// NewService 创建倒数日服务
func NewService(store repository.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Days 计算天数
// 倒计时返回距离目标日期还有几天（已过为负数）；纪念日符号相反，返回已经过去几天
func Days(targetDate, kind string, today time.Time) (int, error) {
	loc := today.Location()
	target, err := time.ParseInLocation(DateLayout, targetDate, loc)
	if err != nil {
		return 0, err
	}
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	// 按小时取整，避免夏令时切换时差一小时
	diff := int(math.Round(target.Sub(start).Hours() / 24))
	if kind == database.CountdownTypeAnniversary {
		return -diff, nil
	}
	return diff, nil
}

// List 按目标日期正序列出
func (s *Service) List(ctx context.Context, userID string) ([]Item, error) {
	countdowns, err := s.store.ListCountdowns(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}

	today := s.now()
	items := make([]Item, 0, len(countdowns))
	for _, c := range countdowns {
		days, err := Days(c.TargetDate, c.Type, today)
		if err != nil {
			// 历史数据格式不对时照常返回，天数记为0
			days = 0
		}
		items = append(items, Item{Countdown: c, Days: days})
	}
	return items, nil
}

// Create 新建倒数日或纪念日
func (s *Service) Create(ctx context.Context, userID, title, targetDate, kind string) (*Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.FromCode(apperrors.ErrInvalidParams).WithDetails("title")
	}
	if kind == "" {
		kind = database.CountdownTypeAnniversary
	}
	if kind != database.CountdownTypeCountdown && kind != database.CountdownTypeAnniversary {
		return nil, apperrors.FromCode(apperrors.ErrCountdownTypeInvalid)
	}
	days, err := Days(targetDate, kind, s.now())
	if err != nil {
		return nil, apperrors.FromCode(apperrors.ErrInvalidParams).WithDetails("target_date")
	}

	c := database.Countdown{UserID: userID, Title: title, TargetDate: targetDate, Type: kind}
	if err := s.store.CreateCountdown(ctx, &c); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseInsert, "", err)
	}
	return &Item{Countdown: c, Days: days}, nil
}

// Delete 删除倒数日
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	err := s.store.DeleteCountdown(ctx, userID, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.FromCode(apperrors.ErrCountdownNotFound)
	default:
		return apperrors.Wrap(apperrors.ErrDatabaseDelete, "", err)
	}
}
