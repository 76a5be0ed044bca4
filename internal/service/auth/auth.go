// Package auth 实现身份服务：注册、登录、会话校验、注销和管理员删除账户
//
// 登录成功后签发 HS256 JWT，jti 即会话ID，会话记录保存在数据库中，
// 所以注销和删除账户可以让尚未过期的令牌立即失效。
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/weiwangfds/lzydiary/config"
	"github.com/weiwangfds/lzydiary/internal/database"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/logger"
	"github.com/weiwangfds/lzydiary/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "lzydiary"

// bcryptCost 测试中会调低
var bcryptCost = bcrypt.DefaultCost

// Claims JWT 载荷，Subject 为账户ID，ID 为会话ID
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Identity 已登录的身份
type Identity struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignUpInput 注册参数
type SignUpInput struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

// Token 登录结果
type Token struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
	Account     *database.Account `json:"account"`
}

// Service 身份服务
type Service struct {
	store    repository.Store
	cfg      config.AuthConfig
	validate *validator.Validate
	now      func() time.Time
}

// NewService 创建身份服务
func NewService(store repository.Store, cfg config.AuthConfig) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = 5 * time.Second
	}
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 6
	}
	return &Service{
		store:    store,
		cfg:      cfg,
		validate: validator.New(),
		now:      time.Now,
	}
}

// SignUp 注册账户
// 邮箱统一转为小写；密码长度按字符计算
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*database.Account, error) {
	email := normalizeEmail(in.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperrors.FromCode(apperrors.ErrInvalidParams).WithDetails("email")
	}
	if utf8.RuneCountInString(in.Password) < s.cfg.MinPasswordLength {
		return nil, apperrors.FromCode(apperrors.ErrPasswordTooShort)
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return nil, apperrors.FromCode(apperrors.ErrPasswordMismatch)
	}

	if _, err := s.store.GetAccountByEmail(ctx, email); err == nil {
		return nil, apperrors.FromCode(apperrors.ErrEmailAlreadyRegistered)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, "", err)
	}

	account := &database.Account{Email: email, PasswordHash: string(hash)}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseInsert, "", err)
	}

	logger.Infof("[认证] 新账户注册: %s", account.ID)
	return account, nil
}

// SignIn 登录并创建会话
func (s *Service) SignIn(ctx context.Context, email, password, userAgent, clientIP string) (*Token, error) {
	account, err := s.store.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.FromCode(apperrors.ErrInvalidCredentials)
		}
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.FromCode(apperrors.ErrInvalidCredentials)
	}

	now := s.now()
	session := &database.Session{
		AccountID: account.ID,
		UserAgent: truncate(userAgent, 500),
		ClientIP:  clientIP,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseInsert, "", err)
	}

	token, err := s.sign(account, session, now)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, "", err)
	}

	logger.Infof("[认证] 账户 %s 登录，会话 %s", account.ID, session.ID)
	return &Token{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt,
		Account:     account,
	}, nil
}

// CurrentSession 校验令牌并返回当前身份
// 会话查询最多等待 SessionTimeout，超时按未登录处理
func (s *Service) CurrentSession(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, apperrors.FromCode(apperrors.ErrSessionExpired).WithOriginalError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SessionTimeout)
	defer cancel()

	session, err := s.store.GetSession(ctx, claims.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.FromCode(apperrors.ErrSessionExpired)
		case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
			logger.Warnf("[认证] 会话 %s 校验超时", claims.ID)
			return nil, apperrors.FromCode(apperrors.ErrAuthTimeout)
		default:
			return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "", err)
		}
	}
	if session.AccountID != claims.Subject || !session.Active(s.now()) {
		return nil, apperrors.FromCode(apperrors.ErrSessionExpired)
	}

	return &Identity{
		AccountID: session.AccountID,
		Email:     claims.Email,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// SignOut 注销会话，重复注销不报错
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if err := s.store.RevokeSession(ctx, sessionID, s.now()); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseUpdate, "", err)
	}
	logger.Infof("[认证] 会话 %s 已注销", sessionID)
	return nil
}

func (s *Service) sign(account *database.Account, session *database.Session, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   account.ID,
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		Email: account.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Service) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// truncate 按字节截断，但不会切开多字节字符
func truncate(s string, max int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
