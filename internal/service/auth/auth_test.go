package auth

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/lzydiary/config"
	"github.com/weiwangfds/lzydiary/internal/database"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, cfg config.AuthConfig) (*Service, *repository.GormStore) {
	t.Helper()
	bcryptCost = bcrypt.MinCost

	db, err := database.Init(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}
	store := repository.NewStore(db)
	return NewService(store, cfg), store
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, config.AuthConfig{})

	account, err := s.SignUp(ctx, SignUpInput{Email: " LZY@Example.com ", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "lzy@example.com", account.Email)
	assert.NotEqual(t, "secret1", account.PasswordHash)

	cases := []struct {
		name string
		in   SignUpInput
		code apperrors.ErrorCode
	}{
		{"邮箱已注册", SignUpInput{Email: "lzy@EXAMPLE.com", Password: "secret1"}, apperrors.ErrEmailAlreadyRegistered},
		{"密码过短", SignUpInput{Email: "a@example.com", Password: "12345"}, apperrors.ErrPasswordTooShort},
		{"确认密码不一致", SignUpInput{Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret2"}, apperrors.ErrPasswordMismatch},
		{"邮箱格式错误", SignUpInput{Email: "not-an-email", Password: "secret1"}, apperrors.ErrInvalidParams},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := s.SignUp(ctx, c.in)
			assert.True(t, apperrors.HasCode(err, c.code), "got %v", err)
		})
	}

	t.Run("中文密码按字符计数", func(t *testing.T) {
		_, err := s.SignUp(ctx, SignUpInput{Email: "cn@example.com", Password: "六个字的密码"})
		assert.NoError(t, err)
	})
}

func TestSignInAndSession(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, config.AuthConfig{TokenTTL: time.Hour})

	_, err := s.SignUp(ctx, SignUpInput{Email: "lzy@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = s.SignIn(ctx, "lzy@example.com", "wrong-password", "", "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidCredentials))
	_, err = s.SignIn(ctx, "nobody@example.com", "secret1", "", "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidCredentials))

	token, err := s.SignIn(ctx, "LZY@example.com", "secret1", "test-agent", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)

	identity, err := s.CurrentSession(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, token.Account.ID, identity.AccountID)
	assert.Equal(t, "lzy@example.com", identity.Email)

	t.Run("篡改的令牌", func(t *testing.T) {
		_, err := s.CurrentSession(ctx, token.AccessToken+"x")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrSessionExpired))
	})

	t.Run("其他密钥签发的令牌", func(t *testing.T) {
		other := NewService(nil, config.AuthConfig{JWTSecret: "another-secret"})
		_, err := other.CurrentSession(ctx, token.AccessToken)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrSessionExpired))
	})

	t.Run("令牌过期", func(t *testing.T) {
		later := *s
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.CurrentSession(ctx, token.AccessToken)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrSessionExpired))
	})

	t.Run("注销后失效", func(t *testing.T) {
		require.NoError(t, s.SignOut(ctx, identity.SessionID))
		require.NoError(t, s.SignOut(ctx, identity.SessionID))
		_, err := s.CurrentSession(ctx, token.AccessToken)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrSessionExpired))
	})
}

func TestCurrentSessionTimeout(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, config.AuthConfig{SessionTimeout: time.Nanosecond})

	_, err := s.SignUp(ctx, SignUpInput{Email: "lzy@example.com", Password: "secret1"})
	require.NoError(t, err)
	token, err := s.SignIn(ctx, "lzy@example.com", "secret1", "", "")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = s.CurrentSession(ctx, token.AccessToken)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrAuthTimeout), "got %v", err)
}

func TestAdminDeleteUser(t *testing.T) {
	ctx := context.Background()
	s, store := newTestService(t, config.AuthConfig{})

	assert.Nil(t, NewAdmin(store, ""))

	account, err := s.SignUp(ctx, SignUpInput{Email: "lzy@example.com", Password: "secret1"})
	require.NoError(t, err)
	token, err := s.SignIn(ctx, "lzy@example.com", "secret1", "", "")
	require.NoError(t, err)

	admin := NewAdmin(store, "admin-key")
	require.NoError(t, admin.DeleteUser(ctx, account.ID))
	require.NoError(t, admin.DeleteUser(ctx, account.ID))

	_, err = store.GetAccount(ctx, account.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.CurrentSession(ctx, token.AccessToken)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrSessionExpired))

	var missing *Admin
	assert.True(t, apperrors.HasCode(missing.DeleteUser(ctx, account.ID), apperrors.ErrAdminUnavailable))
}

func TestSignInTruncatesUserAgent(t *testing.T) {
	ctx := context.Background()
	s, store := newTestService(t, config.AuthConfig{TokenTTL: time.Hour})

	_, err := s.SignUp(ctx, SignUpInput{Email: "ua@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = s.SignIn(ctx, "ua@example.com", "secret1", strings.Repeat("浏览器", 100), "127.0.0.1")
	require.NoError(t, err)

	var session database.Session
	require.NoError(t, store.DB().First(&session).Error)
	assert.True(t, utf8.ValidString(session.UserAgent))
	assert.Equal(t, 498, len(session.UserAgent))
}
