package countdown

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/lzydiary/config"
	"github.com/weiwangfds/lzydiary/internal/database"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/repository"
)

func TestDays(t *testing.T) {
	today := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		target, kind string
		want         int
	}{
		{"2024-06-01", database.CountdownTypeCountdown, 0},
		{"2024-06-11", database.CountdownTypeCountdown, 10},
		{"2024-05-30", database.CountdownTypeCountdown, -2},
		{"2023-06-01", database.CountdownTypeAnniversary, 366},
		{"2024-06-03", database.CountdownTypeAnniversary, -2},
	}
	for _, c := range cases {
		got, err := Days(c.target, c.kind, today)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s %s", c.kind, c.target)
	}

	_, err := Days("2024/06/01", database.CountdownTypeCountdown, today)
	assert.Error(t, err)
}

func TestService(t *testing.T) {
	ctx := context.Background()
	db, err := database.Init(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := NewService(repository.NewStore(db))
	s.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }

	together, err := s.Create(ctx, "u1", "在一起", "2024-05-20", "")
	require.NoError(t, err)
	assert.Equal(t, database.CountdownTypeAnniversary, together.Type)
	assert.Equal(t, 12, together.Days)

	_, err = s.Create(ctx, "u1", "毕业", "2024-07-01", database.CountdownTypeCountdown)
	require.NoError(t, err)

	_, err = s.Create(ctx, "u1", "生日", "2024-07-01", "birthday")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCountdownTypeInvalid))
	_, err = s.Create(ctx, "u1", "生日", "明天", database.CountdownTypeCountdown)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidParams))
	_, err = s.Create(ctx, "u1", "", "2024-07-01", database.CountdownTypeCountdown)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidParams))

	items, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "在一起", items[0].Title)
	assert.Equal(t, 30, items[1].Days)

	assert.True(t, apperrors.HasCode(s.Delete(ctx, "u2", together.ID), apperrors.ErrCountdownNotFound))
	require.NoError(t, s.Delete(ctx, "u1", together.ID))
	assert.True(t, apperrors.HasCode(s.Delete(ctx, "u1", together.ID), apperrors.ErrCountdownNotFound))
}
